package jscsys

import "errors"

// ErrNotBuilt is returned by Native when the binary was compiled without the
// native engine (cgo disabled or an unsupported platform).
var ErrNotBuilt = errors.New("jscsys: built without JavaScriptCore (cgo disabled or unsupported platform)")
