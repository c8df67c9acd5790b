//go:build cgo && linux && !jsc_gtk40

package jscsys

// #cgo pkg-config: javascriptcoregtk-4.1
import "C"

const flavor = "javascriptcoregtk-4.1"
