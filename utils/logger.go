package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lmittmann/tint"
)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(NewLogger(os.Stdout, slog.LevelInfo, true))
}

// NewLogger builds a tint-backed slog logger. Colour is dropped when
// writing somewhere other than a terminal-like stream.
func NewLogger(w io.Writer, level slog.Leveler, color bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}))
}

// SetLogger replaces the logger used by the helpers below.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
}

func Logger() *slog.Logger {
	return logger.Load()
}

// ParseLevel maps debug/info/warn/error onto slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(s)))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func Debug(format string, a ...any) {
	Logger().Debug(fmt.Sprintf(format, a...))
}

func Info(format string, a ...any) {
	Logger().Info(fmt.Sprintf(format, a...))
}

func Success(format string, a ...any) {
	Logger().Info(fmt.Sprintf(format, a...), "status", "ok")
}

func Warn(format string, a ...any) {
	Logger().Warn(fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	Logger().Error(fmt.Sprintf(format, a...))
}

func Section(title string) {
	Logger().Info(fmt.Sprintf("══════════ %s ══════════", title))
}
