package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
)

const replHelp = `.exit   quit
.gc     run the garbage collector
.help   show this text
anything else is evaluated in the session context`

const replPrompt = "jsc> "

// session is one REPL context. Every line is evaluated in the same global
// scope, so declarations persist.
type session struct {
	c   *cli
	ctx *jsc.Context
	n   int
}

func (c *cli) repl(args []string) int {
	var f engineFlags
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	f.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, backend, err := c.engine(f)
	if err != nil {
		return c.engineError(err)
	}
	ctx, err := jsc.NewContext(cfg)
	if err != nil {
		return c.engineError(err)
	}
	defer ctx.Release()
	_ = ctx.SetName("jsc-go repl")

	s := &session{c: c, ctx: ctx}
	if in, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		fmt.Fprintln(c.stdout, c.out.title.Render("jsc-go "+jsc.WrapperVersion()+" ("+backend+" backend)"))
		fmt.Fprintln(c.stdout, c.out.dim.Render("type .help for commands"))
		if err := s.interactive(); err == nil {
			return 0
		}
		// The terminal could not be put in raw mode; read plain lines.
	}
	s.basic()
	return 0
}

// interactive reads lines with history and editing.
func (s *session) interactive() error {
	cfg := &readline.Config{
		Prompt:          replPrompt,
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       ".exit",
		Stdout:          s.c.stdout,
		Stderr:          s.c.stderr,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".jsc_go_history")
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				fmt.Fprintln(s.c.stdout, "(type .exit to quit)")
			}
			continue
		}
		if err != nil {
			return nil
		}
		if !s.handle(line) {
			return nil
		}
	}
}

// basic reads lines from a pipe or file without a prompt.
func (s *session) basic() {
	sc := bufio.NewScanner(s.c.stdin)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		if !s.handle(sc.Text()) {
			return
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintln(s.c.stderr, s.c.errs.err.Render("read: "+err.Error()))
	}
}

// handle runs one line and reports whether the session continues.
func (s *session) handle(line string) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return true
	case ".exit", ".quit":
		return false
	case ".gc":
		s.ctx.GarbageCollect()
		return true
	case ".help":
		fmt.Fprintln(s.c.stdout, replHelp)
		return true
	}

	s.n++
	v, err := s.ctx.EvaluateScript(line, jsc.WithSourceURL(fmt.Sprintf("repl:%d", s.n)))
	if err != nil {
		report(s.c.stdout, s.c.out, err)
		return true
	}
	defer v.Free()
	out, err := describe(v, false, true)
	if err != nil {
		report(s.c.stdout, s.c.out, err)
		return true
	}
	fmt.Fprintln(s.c.stdout, s.c.out.result.Render(out))
	return true
}
