// Package internalcheck holds repository policy tests.
//
// The tests load the module's own packages and fail when the layering rules
// of the binding are broken: only the raw layer may use cgo, native release
// calls in the safe layer are confined to its ownership helpers, and the cgo
// link directives agree with the embedded platform table.
//
// # Internal Use Only
//
// The package has no exported API and is not meant to be imported.
package internalcheck
