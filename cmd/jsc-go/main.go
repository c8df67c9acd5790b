// Command jsc-go evaluates and checks JavaScript with the jsc binding and
// diagnoses the native JavaScriptCore linkage of the host.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/javascriptcore-go/jsc/pkg/jscsys/linkage"
)

const usage = `usage: jsc-go <command> [flags]

commands:
  version   print the wrapper version and linked engine
  doctor    check that the native engine can be linked on this host
  eval      evaluate a script or expression and print the result
  check     check a script for syntax errors without running it
  repl      read-eval-print loop over one context

Run "jsc-go <command> -h" for the flags of a command.
`

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// Host facts, replaced in tests.
	goos    string
	distros func() []string
	runner  linkage.Runner

	out  styles
	errs styles
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		getenv:  os.Getenv,
		goos:    runtime.GOOS,
		distros: linkage.DetectHostDistro,
		runner:  linkage.ExecRunner,
		out:     newStyles(stdout),
		errs:    newStyles(stderr),
	}
}

func main() {
	os.Exit(newCLI(os.Stdin, os.Stdout, os.Stderr).run(os.Args[1:]))
}

// run dispatches a command line and returns the process exit code: 0 on
// success, 1 when the script or host check failed, 2 on usage errors.
func (c *cli) run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		return c.version(rest)
	case "doctor":
		return c.doctor(rest)
	case "eval":
		return c.eval(rest)
	case "check":
		return c.check(rest)
	case "repl":
		return c.repl(rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(c.stdout, usage)
		return 0
	default:
		fmt.Fprintf(c.stderr, "jsc-go: unknown command %q\n\n%s", cmd, usage)
		return 2
	}
}
