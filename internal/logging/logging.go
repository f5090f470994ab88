// Package logging builds the structured logger shared by the simulator
// and the CLI.
package logging

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V(n).
const (
	DEFAULT = 2
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// Options selects the encoder and the highest V level that is emitted.
type Options struct {
	Development bool
	Verbosity   int
}

// New returns a logr.Logger backed by zap. Messages logged with
// V(n) for n <= Verbosity are written to stderr.
func New(opts Options) (logr.Logger, error) {
	cfg := uberzap.NewProductionConfig()
	if opts.Development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	// zap levels are negated logr verbosities.
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * opts.Verbosity))
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = !opts.Development

	zl, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}

// NewTestLogger creates a new Zap logger using the dev mode.
func NewTestLogger() logr.Logger {
	zl, err := uberzap.NewDevelopment()
	if err != nil {
		return logr.Discard()
	}
	return zapr.NewLogger(zl)
}

// IntoContext stores logger in ctx.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}

// FromContext returns the logger stored in ctx, or a logger that drops
// everything.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
