// Package mockvm is an instrumented, in-process implementation of
// jscsys.API.
//
// It plays the role of the native engine in tests: every handle kind is
// reference counted in a table, and the VM records a violation whenever a
// handle is released twice, a value is unprotected more often than it was
// protected, a swept value is used, or a value is used outside its context
// group. CheckBalanced turns the counters and violations into a single error.
//
// Scripts run on goja (github.com/dop251/goja), one runtime per global
// context. This is a test double, not a second engine: it emulates the C API
// surface closely enough to exercise the jsc package without JavaScriptCore
// installed.
//
// # Limitations
//
// Objects cannot move between two contexts of the same group because each
// context is a separate goja runtime; primitives can. Class finalizers run
// when the owning context is released rather than at collection time.
// Evaluating with a this object uses a direct eval, so top-level var
// declarations are local to that evaluation.
package mockvm
