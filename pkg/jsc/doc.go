// Package jsc is a memory-safe wrapper over the JavaScriptCore C API.
//
// The engine does the parsing, compiling, collecting and running. This
// package maps its raw handles and ownership rules onto Go types whose
// lifetimes are checked:
//
//   - ContextGroup: a shared heap. Owner references are counted atomically and
//     the native group is released once, when the last owner lets go.
//   - Context: a global execution context. Release unprotects every Value it
//     still owns before releasing the native context.
//   - Value, Object, TypedArray: protected values. Free unprotects once; any use
//     after Free or after the Context is released returns ErrReleased.
//   - Class: a host object template with optional call and construct
//     callbacks and static members.
//   - String: an owned UTF-16 engine string. Round trips keep NUL and unpaired
//     surrogates.
//   - Exception: a thrown JavaScript value returned as a Go error.
//
// # Quick Start
//
//	ctx, err := jsc.NewContext(jsc.Config{})
//	if err != nil {
//	    return err
//	}
//	defer ctx.Release()
//
//	v, err := ctx.EvaluateScript("1 + 2")
//	if err != nil {
//	    return err // *jsc.Exception when the script threw
//	}
//	defer v.Free()
//	n, _ := v.ToNumber() // 3
//
// # Backends
//
// Config.Native selects the raw engine. Nil means the linked JavaScriptCore
// (jscsys.Native), which fails with ErrNotBuilt in binaries built without cgo.
// mockvm.New() provides an instrumented engine for tests.
//
// # Finalizers
//
// Every owning type carries a finalizer as a safety net. It releases the
// handle if the caller forgot to, and logs a warning for leaked contexts and
// groups. Finalizers are cleared by explicit release; callers should not rely
// on them.
//
// # Thread Safety
//
// A Context and its Values are not safe for concurrent use. ContextGroup
// Retain and Release are. Host callbacks run on the goroutine that called
// into the engine.
package jsc
