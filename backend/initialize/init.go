package initialize

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"dia-relay/backend/app/cache"
	"dia-relay/backend/app/controllers"
	"dia-relay/backend/app/db"
	"dia-relay/backend/app/ingest"
	jwtutil "dia-relay/backend/app/jwt"
	"dia-relay/backend/app/metrics"
	"dia-relay/backend/app/middleware"
	"dia-relay/backend/app/pubsub"
	"dia-relay/backend/app/repo"
	"dia-relay/backend/app/services"
	"dia-relay/backend/app/socket"
	"dia-relay/backend/config"
	"dia-relay/backend/global"
	"dia-relay/backend/router"
	"dia-relay/backend/server"
	"dia-relay/network"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type App struct {
	Cfg       *config.Config
	DB        *gorm.DB
	Queue     *ingest.Queue
	Liveness  *ingest.Liveness
	Listener  *ingest.Listener
	Persister *ingest.Persister
	Watchdog  *ingest.Watchdog
	Publisher *pubsub.Publisher
	Router    http.Handler

	ingestSrv *network.TCPServer
	httpSrv   *http.Server
	httpLn    net.Listener
}

// Build wires every hub component. Both listeners are
// bound here so a port conflict fails startup.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := global.Logger

	// Connect DB
	gdb, err := db.Connect(db.Config{
		Driver: cfg.DB.Driver, Path: cfg.DB.Path,
		Host: cfg.DB.Host, Port: cfg.DB.Port, User: cfg.DB.User, Password: cfg.DB.Pass, DBName: cfg.DB.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	// Migrate
	if err := db.Migrate(gdb); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	queue := ingest.NewQueue()
	live := ingest.NewLiveness()
	rec := metrics.New(cfg.Metrics.Enabled, prometheus.NewRegistry(), queue.Len)

	pub, err := pubsub.NewPublisher(ctx, pubsub.Config{
		Enabled: cfg.Redis.Enabled, Addr: cfg.Redis.Addr, Password: cfg.Redis.Password,
		DB: cfg.Redis.DB, Channel: cfg.Redis.Channel,
	})
	if err != nil {
		return nil, err
	}
	var notifier ingest.Notifier
	if pub != nil {
		notifier = pub
	}

	listener := ingest.NewListener(ingest.ListenerConfig{
		MaxPayloadBytes: cfg.Ingest.MaxPayloadBytes,
		ReadTimeout:     cfg.Ingest.ReadTimeout,
	}, queue, live, notifier, rec, log.With().Str("component", "ingest").Logger())
	persister := ingest.NewPersister(ingest.BatchConfig{
		Window: cfg.Batch.Window, MaxSize: cfg.Batch.MaxSize, PollTimeout: cfg.Batch.PollTimeout,
	}, queue, ingest.NewGormStore(gdb), rec, log.With().Str("component", "persister").Logger())
	watchdog := ingest.NewWatchdog(live, cfg.Watchdog.Interval, cfg.Watchdog.AlertAfter(), rec, log.With().Str("component", "watchdog").Logger())

	// Services
	clientRepo := repo.NewClientRepository(gdb)
	dailyRepo := repo.NewDailyRepository(gdb)
	cmdRepo := repo.NewAgentCommandRepository(gdb)
	relay := socket.NewRelay(cfg.Relay.AgentPort, cfg.Relay.Timeout, log.With().Str("component", "relay").Logger())
	statusSvc := services.NewStatusService(clientRepo, dailyRepo, cache.New(cfg.Cache.Enabled, cfg.Cache.SizeMB, cfg.Cache.TTLSec), live, cfg.Watchdog.AlertAfter())
	cmdSvc := services.NewCommandService(clientRepo, cmdRepo, relay, rec, log)
	signer := &jwtutil.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, ExpMin: cfg.JWT.ExpMin}
	authSvc := services.NewAuthService(cfg.Admin.Username, cfg.Admin.PasswordHash, signer)

	// Controllers
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Handler(rec)
	}
	h := router.NewRouter(
		controllers.NewHTTPController(),
		controllers.NewAuthController(authSvc),
		controllers.NewStatusController(statusSvc, log),
		controllers.NewCommandController(cmdSvc, log),
		&middleware.Auth{Signer: signer},
		metricsHandler,
	)
	// Wrap with logging middleware
	h = middleware.Logging(log, rec, h)

	ingestSrv, err := network.ListenTCP(cfg.Ingest.Host, cfg.Ingest.Port)
	if err != nil {
		return nil, err
	}
	httpSrv, httpLn, err := server.NewHTTPServer(cfg.HTTP.Host, cfg.HTTP.Port, h)
	if err != nil {
		_ = ingestSrv.Close()
		return nil, err
	}

	return &App{
		Cfg: cfg, DB: gdb, Queue: queue, Liveness: live,
		Listener: listener, Persister: persister, Watchdog: watchdog, Publisher: pub,
		Router: h, ingestSrv: ingestSrv, httpSrv: httpSrv, httpLn: httpLn,
	}, nil
}

// Run serves until ctx is cancelled. The persister flushes what is still
// queued before Run returns.
func (a *App) Run(ctx context.Context) error {
	log := global.Logger
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(4)
	go func() {
		defer wg.Done()
		if err := a.Listener.Serve(ctx, a.ingestSrv); err != nil {
			errCh <- fmt.Errorf("ingest listener: %w", err)
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		a.Persister.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.Watchdog.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		log.Info().Str("addr", a.httpLn.Addr().String()).Msg("http api ready")
		if err := server.ServeHTTP(ctx, a.httpSrv, a.httpLn); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
			cancel()
		}
	}()

	wg.Wait()
	close(errCh)
	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if err := a.Publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return errors.Join(errs...)
}
