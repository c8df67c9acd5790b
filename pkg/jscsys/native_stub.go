//go:build !cgo || !(darwin || linux)

package jscsys

const flavor = ""

// Native returns ErrNotBuilt: this binary carries no JavaScriptCore linkage.
func Native() (API, error) {
	return nil, ErrNotBuilt
}
