package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var L zerolog.Logger = zerolog.Nop()

const timeFormat = "2006-01-02 15:04:05"

// Init logs to stdout and path. Lines that cannot be written to path go to
// fallback together with the write error.
func Init(path, fallback string) error {
	var writers []io.Writer
	writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: timeFormat})
	if path != "" {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        &FallbackWriter{Path: path, Fallback: fallback},
			NoColor:    true,
			TimeFormat: timeFormat,
		})
	}
	L = log.Output(zerolog.MultiLevelWriter(writers...))
	return nil
}

// FallbackWriter appends to Path, opening it per write so rotation or
// deletion of the file never wedges logging.
type FallbackWriter struct {
	Path     string
	Fallback string
	mu       sync.Mutex
}

func (w *FallbackWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	err := appendFile(w.Path, p)
	if err == nil {
		return len(p), nil
	}
	if w.Fallback == "" {
		return 0, err
	}
	line := append([]byte(fmt.Sprintf("[log write failed] %v\n", err)), p...)
	if ferr := appendFile(w.Fallback, line); ferr != nil {
		return 0, ferr
	}
	return len(p), nil
}

func appendFile(path string, p []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func Info(v ...interface{})             { L.Info().Msg(fmt.Sprint(v...)) }
func Warn(v ...interface{})             { L.Warn().Msg(fmt.Sprint(v...)) }
func Error(v ...interface{})            { L.Error().Msg(fmt.Sprint(v...)) }
func Infof(f string, v ...interface{})  { L.Info().Msgf(f, v...) }
func Warnf(f string, v ...interface{})  { L.Warn().Msgf(f, v...) }
func Errorf(f string, v ...interface{}) { L.Error().Msgf(f, v...) }
