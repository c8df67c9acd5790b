// Package jscsys is the raw binding layer over the JavaScriptCore C API.
//
// # Design Principles
//
// 1. Isolation: this is the only package in the module that imports "C".
//    Everything above it talks to the engine through the API interface.
//
// 2. One method per entry point: API methods keep the C names (minus the JS
//    prefix) and the C ownership rules. Nothing here retains or releases on the
//    caller's behalf.
//
// 3. Opaque handles: native pointers are carried as uintptr-based handle types
//    (ContextRef, ValueRef, ...). They are never dereferenced outside this
//    package.
//
// 4. Callbacks: Go callbacks reach C as integer IDs stored as object private
//    data, never as Go pointers. The finalize trampoline drops the ID.
//
// # Linking
//
//   - darwin, ios: -framework JavaScriptCore
//   - linux: pkg-config javascriptcoregtk-4.1, or javascriptcoregtk-4.0 with
//     the jsc_gtk40 build tag
//
// A missing pkg-config package fails the build with a diagnostic naming it.
// Other platforms, and builds without cgo, compile a stub whose Native
// returns ErrNotBuilt. See the linkage subpackage for install hints.
//
// # Threading
//
// JavaScriptCore serialises access per context group. The API itself carries
// no locks; callers must not use one group from several goroutines at once.
package jscsys
