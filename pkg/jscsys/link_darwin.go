//go:build cgo && darwin

package jscsys

// #cgo LDFLAGS: -framework JavaScriptCore
import "C"

const flavor = "JavaScriptCore.framework"
