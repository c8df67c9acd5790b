package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// Loaders accepted by -loader.
const (
	loaderJS  = "js"
	loaderTS  = "ts"
	loaderJSX = "jsx"
	loaderTSX = "tsx"
)

var errNoSource = errors.New("no script: pass -e or a file")

// script is a source ready for evaluation.
type script struct {
	source string
	url    string
}

// loadScript reads the script named by expr or path and transpiles it when
// the loader calls for it. An empty loader is taken from the file extension.
func loadScript(expr, path, loader string) (script, error) {
	var s script
	switch {
	case expr != "" && path != "":
		return s, errors.New("pass either -e or a file, not both")
	case expr != "":
		s.source = expr
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return s, err
		}
		s.source, s.url = string(data), path
	default:
		return s, errNoSource
	}

	if loader == "" {
		loader = loaderFor(path)
	}
	out, err := transpile(s.source, s.url, loader)
	if err != nil {
		return s, err
	}
	s.source = out
	return s, nil
}

func loaderFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return loaderTS
	case ".tsx":
		return loaderTSX
	case ".jsx":
		return loaderJSX
	default:
		return loaderJS
	}
}

// transpile lowers TypeScript and JSX to a classic script. Plain JavaScript
// is passed through untouched so the engine reports its own syntax errors.
func transpile(source, url, loader string) (string, error) {
	var l esbuild.Loader
	switch loader {
	case loaderJS:
		return source, nil
	case loaderTS:
		l = esbuild.LoaderTS
	case loaderJSX:
		l = esbuild.LoaderJSX
	case loaderTSX:
		l = esbuild.LoaderTSX
	default:
		return "", fmt.Errorf("unknown loader %q", loader)
	}

	result := esbuild.Transform(source, esbuild.TransformOptions{
		Loader:     l,
		Target:     esbuild.ES2020,
		Sourcefile: url,
	})
	if len(result.Errors) > 0 {
		msgs := esbuild.FormatMessages(result.Errors, esbuild.FormatMessagesOptions{Kind: esbuild.ErrorMessage})
		return "", fmt.Errorf("transpile: %s", strings.TrimSpace(strings.Join(msgs, "\n")))
	}
	return string(result.Code), nil
}
