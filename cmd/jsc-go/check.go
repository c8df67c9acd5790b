package main

import (
	"flag"
	"fmt"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
)

func (c *cli) check(args []string) int {
	var f engineFlags
	var loader string
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	f.register(fs)
	fs.StringVar(&loader, "loader", "", "source language: js, ts, jsx or tsx (default from extension)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(c.stderr, "usage: jsc-go check [flags] file")
		return 2
	}
	path := fs.Arg(0)

	s, err := loadScript("", path, loader)
	if err != nil {
		fmt.Fprintln(c.stderr, c.errs.err.Render("jsc-go check: "+err.Error()))
		return 1
	}
	cfg, _, err := c.engine(f)
	if err != nil {
		return c.engineError(err)
	}
	ctx, err := jsc.NewContext(cfg)
	if err != nil {
		return c.engineError(err)
	}
	defer ctx.Release()

	if err := ctx.CheckScriptSyntax(s.source, jsc.WithSourceURL(path)); err != nil {
		report(c.stderr, c.errs, err)
		return 1
	}
	fmt.Fprintln(c.stdout, c.out.ok.Render(path+": ok"))
	return 0
}
