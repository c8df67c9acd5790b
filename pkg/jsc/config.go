package jsc

import (
	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// Config selects the engine implementation and logger for a ContextGroup.
type Config struct {
	// Native is the raw engine. Leaving it nil selects jscsys.Native(), which
	// fails with ErrNotBuilt in binaries built without cgo.
	Native jscsys.API

	// Logger receives lifecycle records at Debug and leak reports at Warn.
	// Leaving it nil binds to slog.Default().
	Logger logging.Logger
}

func (c Config) api() (jscsys.API, error) {
	if c.Native != nil {
		return c.Native, nil
	}
	api, err := jscsys.Native()
	if err != nil {
		return nil, RemapError(err)
	}
	return api, nil
}

func (c Config) logger() logging.Logger {
	if c.Logger == nil {
		return logging.New(nil)
	}
	return c.Logger
}

// ContextConfig describes one global context.
type ContextConfig struct {
	// Name is shown by debuggers. Empty leaves the context unnamed.
	Name string

	// GlobalClass, when set, backs the global object. Its static functions and
	// values are installed on the global object.
	GlobalClass *Class
}
