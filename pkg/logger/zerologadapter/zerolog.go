// Package zerologadapter adapts a zerolog.Logger to the SDK logger interface,
// for host applications that standardize on zerolog.
package zerologadapter

import (
	"github.com/rs/zerolog"
)

type Adapter struct {
	logger zerolog.Logger
}

func New(l zerolog.Logger) *Adapter {
	return &Adapter{logger: l}
}

func kvFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}

func (a *Adapter) Error(msg string, args ...any) {
	kvFields(a.logger.Error(), args).Msg(msg)
}

func (a *Adapter) Warn(msg string, args ...any) {
	kvFields(a.logger.Warn(), args).Msg(msg)
}

func (a *Adapter) Info(msg string, args ...any) {
	kvFields(a.logger.Info(), args).Msg(msg)
}

func (a *Adapter) Debug(msg string, args ...any) {
	kvFields(a.logger.Debug(), args).Msg(msg)
}
