package main

import (
	"errors"
	"flag"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// backendEnv selects the engine when -backend is not given.
const backendEnv = "JSCGO_BACKEND"

const (
	backendAuto   = "auto"
	backendNative = "native"
	backendMock   = "mock"
)

var errUnknownBackend = errors.New("unknown backend")

// engineFlags are shared by the commands that run scripts.
type engineFlags struct {
	backend string
	verbose bool
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.backend, "backend", "", "engine: native, mock or auto (default $"+backendEnv+", else auto)")
	fs.BoolVar(&f.verbose, "v", false, "log engine lifecycle to stderr")
}

// engine resolves the flags into a jsc.Config. auto prefers the linked engine
// and falls back to the goja-backed emulation.
func (c *cli) engine(f engineFlags) (jsc.Config, string, error) {
	name := f.backend
	if name == "" {
		name = c.getenv(backendEnv)
	}
	if name == "" {
		name = backendAuto
	}

	cfg := jsc.Config{Logger: c.logger(f.verbose)}
	switch name {
	case backendNative:
		api, err := jscsys.Native()
		if err != nil {
			return cfg, name, jsc.RemapError(err)
		}
		cfg.Native = api
	case backendMock:
		cfg.Native = mockvm.New()
	case backendAuto:
		if api, err := jscsys.Native(); err == nil {
			cfg.Native, name = api, backendNative
		} else {
			cfg.Native, name = mockvm.New(), backendMock
		}
	default:
		return cfg, name, fmt.Errorf("%w %q", errUnknownBackend, name)
	}
	return cfg, name, nil
}

func (c *cli) logger(verbose bool) logging.Logger {
	if !verbose {
		return logging.Nop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(c.stderr),
		zap.DebugLevel,
	)
	return logging.NewZap(zap.New(core))
}

// engineError reports a backend failure and returns the exit code for it.
func (c *cli) engineError(err error) int {
	fmt.Fprintln(c.stderr, c.errs.err.Render("jsc-go: "+err.Error()))
	if errors.Is(err, jsc.ErrNotBuilt) {
		fmt.Fprintln(c.stderr, c.errs.dim.Render(`run "jsc-go doctor" to diagnose, or use -backend mock`))
	}
	if errors.Is(err, errUnknownBackend) {
		return 2
	}
	return 1
}
