package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"dia-relay/agent/internal/command"
	"dia-relay/agent/internal/config"
	"dia-relay/agent/internal/ingress"
	"dia-relay/agent/internal/instance"
	"dia-relay/agent/internal/logger"
	"dia-relay/agent/internal/msgcache"
	"dia-relay/agent/internal/procwatch"
	"dia-relay/agent/internal/state"
	"dia-relay/network"
)

// Version is written to the version file at startup. Overridden with -ldflags.
var Version = "v2.4.0"

func main() {
	cfgPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	flag.Parse()

	store, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot load config:", err)
		os.Exit(1)
	}
	cfg := store.Get()

	lock, err := startup(cfg, time.Now())
	if errors.Is(err, instance.ErrAlreadyRunning) {
		fmt.Println("Agent is already running, exiting")
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Cannot acquire instance lock:", err)
		os.Exit(1)
	}
	defer lock.Release()
	logger.Infof("Agent started (%s)", Version)

	store.Watch(func(err error) { logger.Warnf("Config reload rejected: %v", err) })
	store.OnChange(func(c *config.AppConfig) {
		logger.Infof("Config reloaded: %d sensitive commands, %d targets", len(c.SensitiveCommands), len(c.Targets))
	})

	detector := procwatch.NewProcessDetector(store.Targets)
	cache := msgcache.New(cfg.Files.MessageCache, func() int { return store.Get().MessageCacheMaxLines })
	listener := command.NewListener(detector, store, cache, state.NewFile(cfg.Files.CommandState), cfg.Command.MaxBytes)

	cmdSrv, err := network.ListenTCP(cfg.Command.Host, cfg.Command.Port)
	if err != nil {
		logger.Errorf("Cannot bind command port: %v", err)
		os.Exit(1)
	}
	httpLn, err := ingress.Listen(cfg.HTTP.Port)
	if err != nil {
		logger.Errorf("Cannot bind report ingress: %v", err)
		os.Exit(1)
	}
	logger.Infof("Report ingress waiting on %s", httpLn.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := listener.Serve(ctx, cmdSrv); err != nil {
			logger.Errorf("Command listener stopped: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		h := ingress.NewHandler(cfg.Hub.Host, cfg.Hub.Port, cfg.ReportTimeout)
		if err := ingress.Serve(ctx, httpLn, h); err != nil {
			logger.Errorf("Report ingress stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
	wg.Wait()
}

// startup takes the instance lock before touching any file, so a duplicate
// agent leaves the running one's log and version file alone.
func startup(cfg *config.AppConfig, now time.Time) (instance.Lock, error) {
	lock, err := instance.Acquire(cfg.InstanceName)
	if err != nil {
		return nil, err
	}

	rotateErr := logger.Rotate(cfg.Files.Log, cfg.Log.MaxSizeMB, cfg.Log.MaxAgeDays, now)
	_ = logger.Init(cfg.Files.Log, cfg.Files.LogFallback)
	if rotateErr != nil {
		logger.Errorf("Log rotation failed: %v", rotateErr)
	}

	if err := os.WriteFile(cfg.Files.Version, []byte(Version), 0o644); err != nil {
		logger.Errorf("Cannot write version file: %v", err)
	} else {
		logger.Infof("Version file saved: %s", Version)
	}
	return lock, nil
}
