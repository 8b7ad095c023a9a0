package initialize

import (
	"io"
	"os"

	"dia-relay/backend/global"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger points global.Logger at stdout and, when path is set, the log file.
func InitLogger(level, path string) (*os.File, error) {
	var writers []io.Writer
	writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"})
	var file *os.File
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		file = f
		writers = append(writers, zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: "2006-01-02 15:04:05"})
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	global.Logger = log.Output(zerolog.MultiLevelWriter(writers...)).Level(lvl)
	return file, nil
}
