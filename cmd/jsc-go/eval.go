package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
)

type evalFlags struct {
	engineFlags
	expr   string
	loader string
	url    string
	line   int
	json   bool
	watch  bool
}

func (c *cli) eval(args []string) int {
	var f evalFlags
	fs := flag.NewFlagSet("eval", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	f.register(fs)
	fs.StringVar(&f.expr, "e", "", "evaluate `expr` instead of a file")
	fs.StringVar(&f.loader, "loader", "", "source language: js, ts, jsx or tsx (default from extension)")
	fs.StringVar(&f.url, "url", "", "source URL reported in stacks (default the file name)")
	fs.IntVar(&f.line, "line", 1, "starting line number")
	fs.BoolVar(&f.json, "json", false, "print the result as JSON")
	fs.BoolVar(&f.watch, "watch", false, "re-evaluate whenever the file changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(c.stderr, "jsc-go eval: at most one file")
		return 2
	}
	path := fs.Arg(0)

	cfg, _, err := c.engine(f.engineFlags)
	if err != nil {
		return c.engineError(err)
	}

	if f.watch {
		if path == "" {
			fmt.Fprintln(c.stderr, "jsc-go eval: -watch needs a file")
			return 2
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := c.watch(ctx, path, func() { c.evalOnce(cfg, f, path) }); err != nil {
			fmt.Fprintln(c.stderr, c.errs.err.Render("jsc-go eval: "+err.Error()))
			return 1
		}
		return 0
	}
	return c.evalOnce(cfg, f, path)
}

// evalOnce evaluates in a fresh context and prints the result.
func (c *cli) evalOnce(cfg jsc.Config, f evalFlags, path string) int {
	s, err := loadScript(f.expr, path, f.loader)
	if err != nil {
		fmt.Fprintln(c.stderr, c.errs.err.Render("jsc-go eval: "+err.Error()))
		if errors.Is(err, errNoSource) {
			return 2
		}
		return 1
	}
	url := s.url
	if f.url != "" {
		url = f.url
	}

	ctx, err := jsc.NewContext(cfg)
	if err != nil {
		return c.engineError(err)
	}
	defer ctx.Release()

	v, err := ctx.EvaluateScript(s.source, jsc.WithSourceURL(url), jsc.WithStartingLine(f.line))
	if err != nil {
		report(c.stderr, c.errs, err)
		return 1
	}
	defer v.Free()

	out, err := describe(v, f.json, false)
	if err != nil {
		report(c.stderr, c.errs, err)
		return 1
	}
	fmt.Fprintln(c.stdout, c.out.result.Render(out))
	return 0
}

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 200 * time.Millisecond

// watch runs fn now and after every change to path until ctx is done. The
// directory is watched so replace-by-rename saves are seen.
func (c *cli) watch(ctx context.Context, path string, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	fn()
	fmt.Fprintln(c.stderr, c.errs.dim.Render("watching "+path+" (Ctrl+C to stop)"))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			fire = timer.C
		case <-fire:
			fire = nil
			fmt.Fprintln(c.stderr, c.errs.dim.Render("--- "+time.Now().Format(time.TimeOnly)+" "+path))
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(c.stderr, c.errs.err.Render("watch: "+err.Error()))
		}
	}
}
