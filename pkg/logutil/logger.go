// Package logutil picks the logger for work done on behalf of a request.
package logutil

import (
	"context"

	"github.com/rs/zerolog"
)

// ComponentKey is the field that names the subsystem emitting a log line.
const ComponentKey = "component"

// Component returns a child of log tagged with the component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str(ComponentKey, name).Logger()
}

// FromContext returns the request logger stored in ctx tagged with component,
// so request-scoped fields like request_id and the component name end up on the
// same line. Outside a request the component's own logger is used.
func FromContext(ctx context.Context, fallback *zerolog.Logger, component string) *zerolog.Logger {
	if ctx != nil {
		if ctxLog := zerolog.Ctx(ctx); ctxLog != nil && ctxLog.GetLevel() != zerolog.Disabled {
			if component == "" {
				return ctxLog
			}
			scoped := Component(*ctxLog, component)
			return &scoped
		}
	}
	if fallback == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return fallback
}
