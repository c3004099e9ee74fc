package utils

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xyproto/env/v2"
)

// LogLevelEnv names the variable that sets the default log level.
const LogLevelEnv = "SIMPLEC_LOG_LEVEL"

// DefaultLogLevel returns $SIMPLEC_LOG_LEVEL, or "warn".
func DefaultLogLevel() string {
	return env.Str(LogLevelEnv, "warn")
}

// ParseLevel accepts debug, info, warn or error.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return lvl, nil
}

// InitLogger installs a text handler on w as the default slog logger.
func InitLogger(w io.Writer, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}
