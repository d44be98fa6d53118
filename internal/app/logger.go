package app

import (
	"fmt"
	"io"
	"log/slog"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// newLogger creates an isolated slog.Logger writing to outW. It does not set
// the global logger. Unknown levels and formats are errors.
func newLogger(levelStr, formatStr string, outW io.Writer) (*slog.Logger, error) {
	level, ok := logLevels[levelStr]
	if !ok {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", levelStr)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch formatStr {
	case "text":
		return slog.New(slog.NewTextHandler(outW, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(outW, handlerOpts)), nil
	}
	return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", formatStr)
}
