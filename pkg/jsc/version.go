package jsc

import "github.com/javascriptcore-go/jsc/pkg/jscsys"

var Version = "v0.0.0-in-progress"

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// UpstreamFlavor names the JavaScriptCore library linked into this binary, or
// "none" when the native layer is not built.
func UpstreamFlavor() string {
	if f := jscsys.Flavor(); f != "" {
		return f
	}
	return "none"
}
