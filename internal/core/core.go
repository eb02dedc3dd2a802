package core

import (
	"errors"
	"os"
	"time"
)

// https://stackoverflow.com/a/12518877
func FileExists(filePath string) (bool, error) {
	if _, err := os.Stat(filePath); err == nil {
		return true, nil
	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else {
		return false, err
	}
}

func FlagChannel(c chan<- struct{}) {
	select {
	case c <- struct{}{}:
	default:
	}
}

func Optional[T any](optional *T, defaulT T) T {
	if optional != nil {
		return *optional
	}
	return defaulT
}

func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// Oldest returns the earliest non-zero time, or the zero time when there is
// none.
func Oldest(times ...time.Time) time.Time {
	var t time.Time
	for _, v := range times {
		if v.IsZero() {
			continue
		}
		if t.IsZero() || v.Before(t) {
			t = v
		}
	}
	return t
}
