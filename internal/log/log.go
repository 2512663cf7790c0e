package log

import (
	"context"
)

// Kv is a helper type for structured logging fields usage.
type Kv = map[string]any

// Logger is the interface that the loggers used by the app will implement.
type Logger interface {
	Infof(format string, args ...any)
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
	WithValues(values map[string]any) Logger
	WithCtxValues(ctx context.Context) Logger
	SetValuesOnCtx(parent context.Context, values map[string]any) context.Context
}

// Noop logger doesn't log anything.
const Noop = noop(0)

type noop int

func (n noop) Infof(format string, args ...any)     {}
func (n noop) Warningf(format string, args ...any)  {}
func (n noop) Errorf(format string, args ...any)    {}
func (n noop) Debugf(format string, args ...any)    {}
func (n noop) WithValues(map[string]any) Logger     { return n }
func (n noop) WithCtxValues(context.Context) Logger { return n }
func (n noop) SetValuesOnCtx(parent context.Context, _ map[string]any) context.Context {
	return parent
}

type contextKey string

const contextKeyLogValues contextKey = "log-values"

// CtxWithValues returns a copy of parent with the received log values merged
// on top of the ones already present.
func CtxWithValues(parent context.Context, kv Kv) context.Context {
	oldKv := ValuesFromCtx(parent)
	newKv := Kv{}
	for k, v := range oldKv {
		newKv[k] = v
	}
	for k, v := range kv {
		newKv[k] = v
	}

	return context.WithValue(parent, contextKeyLogValues, newKv)
}

// ValuesFromCtx gets the log key-values from a context.
func ValuesFromCtx(ctx context.Context) Kv {
	values, ok := ctx.Value(contextKeyLogValues).(Kv)
	if !ok {
		return Kv{}
	}

	return values
}
