package main

import (
	"flag"
	"fmt"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

func (c *cli) version(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	native := "available"
	if _, err := jscsys.Native(); err != nil {
		native = "unavailable: " + jsc.RemapError(err).Error()
	}
	fmt.Fprintf(c.stdout, "jsc-go %s\n", jsc.WrapperVersion())
	fmt.Fprintf(c.stdout, "engine: %s\n", jsc.UpstreamFlavor())
	fmt.Fprintf(c.stdout, "native backend: %s\n", native)
	return 0
}
