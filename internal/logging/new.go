package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	BackendSlog = "slog"
	BackendZap  = "zap"

	FormatJSON = "json"
	FormatText = "text"
)

// Options selects and tunes a Logger implementation.
type Options struct {
	Backend string
	Format  string
	Level   string
}

// New builds a Logger writing to w. The returned func flushes buffered output
// and should be deferred by the caller.
func New(opts Options, w io.Writer) (Logger, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(opts.Backend) {
	case BackendSlog, "":
		var level slog.Level
		if err := level.UnmarshalText([]byte(defaultLevel(opts.Level))); err != nil {
			return nil, noop, fmt.Errorf("log level: %w", err)
		}
		hopts := &slog.HandlerOptions{Level: level}

		var h slog.Handler
		switch strings.ToLower(opts.Format) {
		case FormatText:
			h = slog.NewTextHandler(w, hopts)
		case FormatJSON, "":
			h = slog.NewJSONHandler(w, hopts)
		default:
			return nil, noop, fmt.Errorf("unknown log format %q", opts.Format)
		}
		return NewSlogLogger(slog.New(h)), noop, nil

	case BackendZap:
		level, err := zapcore.ParseLevel(defaultLevel(opts.Level))
		if err != nil {
			return nil, noop, fmt.Errorf("log level: %w", err)
		}

		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "timestamp"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		var enc zapcore.Encoder
		switch strings.ToLower(opts.Format) {
		case FormatText:
			enc = zapcore.NewConsoleEncoder(encCfg)
		case FormatJSON, "":
			enc = zapcore.NewJSONEncoder(encCfg)
		default:
			return nil, noop, fmt.Errorf("unknown log format %q", opts.Format)
		}

		zl := NewZapLogger(zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)))
		return zl, zl.Sync, nil

	default:
		return nil, noop, fmt.Errorf("unknown log backend %q", opts.Backend)
	}
}

func defaultLevel(l string) string {
	if l == "" {
		return "info"
	}
	return l
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
