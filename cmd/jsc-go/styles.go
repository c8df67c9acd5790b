package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
)

// styles render for one output stream. A renderer bound to a non-terminal
// writer emits plain text.
type styles struct {
	result lipgloss.Style
	err    lipgloss.Style
	dim    lipgloss.Style
	ok     lipgloss.Style
	title  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		result: r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		err:    r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:    r.NewStyle().Foreground(lipgloss.Color("#666666")),
		ok:     r.NewStyle().Foreground(lipgloss.Color("#98FB98")).Bold(true),
		title:  r.NewStyle().Bold(true),
	}
}

// describe renders v for display. With asJSON objects are pretty printed;
// quote marks strings as strings.
func describe(v *jsc.Value, asJSON, quote bool) (string, error) {
	if asJSON && !v.IsUndefined() {
		doc, err := v.ToJSON(2)
		if err == nil {
			return doc, nil
		}
		var conv *jsc.ConversionError
		if !errors.As(err, &conv) || conv.Err != nil {
			return "", err
		}
	}
	s, err := v.ToString()
	if err != nil {
		return "", err
	}
	if quote && v.IsString() {
		return strconv.Quote(s), nil
	}
	return s, nil
}

// report prints a script failure to w. Exceptions show their stack when the
// engine recorded one.
func report(w io.Writer, st styles, err error) {
	var exc *jsc.Exception
	if !errors.As(err, &exc) {
		fmt.Fprintln(w, st.err.Render(err.Error()))
		return
	}
	fmt.Fprintln(w, st.err.Render("Uncaught "+exc.Error()))
	if stack := exc.Stack(); stack != "" {
		fmt.Fprintln(w, st.dim.Render(stack))
	}
}
