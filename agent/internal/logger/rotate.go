package logger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Rotate keeps path bounded before logging starts. A file above maxSizeMB
// is shifted to path.1 (path.1 to path.2, older copies dropped); a file
// untouched for more than maxAgeDays is removed.
func Rotate(path string, maxSizeMB, maxAgeDays int, now time.Time) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if maxSizeMB > 0 && info.Size() > int64(maxSizeMB)*1024*1024 {
		if err := shift(path); err != nil {
			return fmt.Errorf("rotate %s: %w", path, err)
		}
		return nil
	}
	if maxAgeDays > 0 && now.Sub(info.ModTime()) > time.Duration(maxAgeDays)*24*time.Hour {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale log %s: %w", path, err)
		}
	}
	return nil
}

func shift(path string) error {
	if err := os.Remove(path + ".2"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Rename(path+".1", path+".2"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(path, path+".1")
}
