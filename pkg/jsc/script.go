package jsc

import (
	"context"

	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

type scriptOptions struct {
	this      *Object
	sourceURL string
	line      int
}

// ScriptOption adjusts EvaluateScript and CheckScriptSyntax.
type ScriptOption func(*scriptOptions)

// WithThis sets the this object of the script. The default is the global
// object. CheckScriptSyntax ignores it.
func WithThis(this *Object) ScriptOption {
	return func(o *scriptOptions) { o.this = this }
}

// WithSourceURL names the script in stack traces and exceptions.
func WithSourceURL(url string) ScriptOption {
	return func(o *scriptOptions) { o.sourceURL = url }
}

// WithStartingLine sets the line number of the first source line. Values
// below 1 are treated as 1.
func WithStartingLine(line int) ScriptOption {
	return func(o *scriptOptions) { o.line = line }
}

func scriptConfig(opts []ScriptOption) scriptOptions {
	cfg := scriptOptions{line: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.line < 1 {
		cfg.line = 1
	}
	return cfg
}

// sourceRefs creates the script and URL strings. release drops both.
func (c *Context) sourceRefs(source string, cfg scriptOptions) (script, url jscsys.StringRef, release func()) {
	script = jsString(c.api, source)
	if cfg.sourceURL != "" {
		url = jsString(c.api, cfg.sourceURL)
	}
	return script, url, func() {
		releaseString(c.api, script)
		releaseString(c.api, url)
	}
}

// EvaluateScript runs source and returns its completion value. A thrown
// exception is returned as an *Exception.
func (c *Context) EvaluateScript(source string, opts ...ScriptOption) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	cfg := scriptConfig(opts)
	this, err := c.objectRef(cfg.this)
	if err != nil {
		return nil, err
	}

	c.log.Debug(context.Background(), "evaluate script", logging.Script(source, cfg.sourceURL, cfg.line)...)

	script, url, release := c.sourceRefs(source, cfg)
	defer release()
	ref, exc := c.api.EvaluateScript(c.ref, script, this, url, cfg.line)
	if exc != 0 {
		return nil, c.exception(exc)
	}
	return c.wrap(ref), nil
}

// CheckScriptSyntax parses source without running it. Invalid syntax is
// returned as an *Exception holding the SyntaxError.
func (c *Context) CheckScriptSyntax(source string, opts ...ScriptOption) error {
	if err := c.live(); err != nil {
		return err
	}
	cfg := scriptConfig(opts)
	script, url, release := c.sourceRefs(source, cfg)
	defer release()
	ok, exc := c.api.CheckScriptSyntax(c.ref, script, url, cfg.line)
	if exc != 0 {
		return c.exception(exc)
	}
	if !ok {
		return c.syntaxError()
	}
	return nil
}

// syntaxError stands in when the engine rejects a script without reporting
// why.
func (c *Context) syntaxError() error {
	errObj, err := c.NewError("invalid syntax")
	if err != nil {
		return err
	}
	name, err := c.NewString("SyntaxError")
	if err == nil {
		_ = errObj.SetProperty("name", name)
		name.Free()
	}
	return newException(errObj.Value)
}
