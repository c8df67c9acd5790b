package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jscsys/linkage"
)

// gtk40Tag selects the javascriptcoregtk-4.0 link directive.
const gtk40Tag = "jsc_gtk40"

func (c *cli) doctor(args []string) int {
	var tablePath string
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	fs.StringVar(&tablePath, "table", "", "platform table `file` (default the embedded table)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	table, err := linkage.Default()
	if tablePath != "" {
		table, err = linkage.Load(tablePath)
	}
	if err != nil {
		fmt.Fprintln(c.stderr, c.errs.err.Render("jsc-go doctor: "+err.Error()))
		return 1
	}

	var distros []string
	if c.goos == "linux" {
		distros = c.distros()
	}
	fmt.Fprintf(c.stdout, "os:      %s\n", c.goos)
	if len(distros) > 0 {
		fmt.Fprintf(c.stdout, "distro:  %s\n", strings.Join(distros, ", "))
	}
	fmt.Fprintf(c.stdout, "linked:  %s\n", jsc.UpstreamFlavor())

	p, err := table.Lookup(c.goos, distros...)
	if err != nil {
		fmt.Fprintln(c.stdout, c.out.err.Render(err.Error()))
		return 1
	}
	fmt.Fprintf(c.stdout, "table:   %s\n", p.Name)

	var tags []string
	if jsc.UpstreamFlavor() == "javascriptcoregtk-4.0" {
		tags = append(tags, gtk40Tag)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := linkage.Probe(ctx, p, c.runner, tags...)
	if err != nil {
		fmt.Fprintln(c.stdout, c.out.err.Render("missing: "+err.Error()))
		var missing *linkage.MissingPackageError
		if errors.As(err, &missing) && missing.Output != "" {
			fmt.Fprintln(c.stdout, c.out.dim.Render(missing.Output))
		}
		return 1
	}

	if res.Module != "" {
		fmt.Fprintf(c.stdout, "module:  %s %s\n", res.Module, res.Version)
	}
	fmt.Fprintf(c.stdout, "flags:   %s\n", strings.Join(res.Flags, " "))
	fmt.Fprintln(c.stdout, c.out.ok.Render("ok"))
	return 0
}
