package middlewares

import (
	"runtime"

	"github.com/dmitrymomot/velo/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	StackSize         int  // Max stack trace size (default: 4096)
	DisablePrintStack bool // Disable stack trace in logs
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns chained middleware that recovers from panics in
// downstream middleware and handlers. It logs the panic and returns a
// PanicError to be handled by the application error handler.
func Recover(opts ...RecoverOption) internal.Middleware {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return internal.Chain(func(c *internal.Context, next internal.Next) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				var stack []byte
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					n := runtime.Stack(stack, false)
					stack = stack[:n]
				}

				if cfg.DisablePrintStack {
					c.LogError("panic recovered", "panic", r)
				} else {
					c.LogError("panic recovered", "panic", r, "stack", string(stack))
				}

				result = nil
				err = &PanicError{
					Value: r,
					Stack: stack,
				}
			}
		}()

		return next()
	})
}
