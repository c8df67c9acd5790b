package linkage

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// MissingPackageError reports that pkg-config could not find a module.
type MissingPackageError struct {
	Module string
	Hint   string
	Output string
}

func (e *MissingPackageError) Error() string {
	msg := fmt.Sprintf("linkage: pkg-config module %q not found", e.Module)
	if e.Hint != "" {
		msg += "; " + e.Hint
	}
	return msg
}

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Result is the outcome of a successful probe.
type Result struct {
	Platform string
	Module   string // empty for framework platforms
	Version  string
	Flags    []string
}

// Probe checks that the linkage for p is usable. Framework platforms need
// no probe. For pkg-config platforms the module chosen by buildTags is
// queried for its version and link flags.
func Probe(ctx context.Context, p *Platform, run Runner, buildTags ...string) (Result, error) {
	if p == nil {
		return Result{}, ErrUnsupportedPlatform
	}
	if len(p.Modules) == 0 {
		return Result{Platform: p.Name, Flags: p.LDFlags()}, nil
	}
	if run == nil {
		run = ExecRunner
	}

	m, ok := p.Module(buildTags...)
	if !ok {
		return Result{}, fmt.Errorf("linkage: platform %q has no module for tags %v", p.Name, buildTags)
	}

	out, err := run(ctx, "pkg-config", "--modversion", m.PkgConfig)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return Result{}, fmt.Errorf("linkage: pkg-config is not installed: %w", err)
		}
		return Result{}, &MissingPackageError{Module: m.PkgConfig, Hint: m.Install, Output: strings.TrimSpace(string(out))}
	}
	version := strings.TrimSpace(string(out))

	libs, err := run(ctx, "pkg-config", "--libs", m.PkgConfig)
	if err != nil {
		return Result{}, &MissingPackageError{Module: m.PkgConfig, Hint: m.Install, Output: strings.TrimSpace(string(libs))}
	}
	return Result{
		Platform: p.Name,
		Module:   m.PkgConfig,
		Version:  version,
		Flags:    strings.Fields(string(libs)),
	}, nil
}
