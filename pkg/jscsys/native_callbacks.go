//go:build cgo && (darwin || linux)

package jscsys

// Files with //export may only carry declarations in their preamble, so the
// trampolines that call these live in native.go.

/*
#include <JavaScriptCore/JavaScript.h>
*/
import "C"

import "github.com/javascriptcore-go/jsc/internal/registry"

//export jscgoCallAsFunction
func jscgoCallAsFunction(ctx C.JSContextRef, function C.JSObjectRef, thisObject C.JSObjectRef,
	argc C.size_t, argv *C.JSValueRef, exception *C.JSValueRef) (ret C.JSValueRef) {
	defer func() {
		if r := recover(); r != nil {
			*exception = panicException(ctx, r)
			ret = nil
		}
	}()

	rec, ok := lookupRecord(function)
	if !ok || rec.call == nil {
		return C.JSValueMakeUndefined(ctx)
	}
	result, exc := rec.call(goCtx(ctx), goObject(function), goObject(thisObject), goArgs(argc, argv))
	if exc != 0 {
		*exception = cValue(exc)
		return nil
	}
	if result == 0 {
		return C.JSValueMakeUndefined(ctx)
	}
	return cValue(result)
}

//export jscgoCallAsConstructor
func jscgoCallAsConstructor(ctx C.JSContextRef, constructor C.JSObjectRef,
	argc C.size_t, argv *C.JSValueRef, exception *C.JSValueRef) (ret C.JSObjectRef) {
	defer func() {
		if r := recover(); r != nil {
			*exception = panicException(ctx, r)
			ret = nil
		}
	}()

	rec, ok := lookupRecord(constructor)
	if !ok || rec.construct == nil {
		*exception = errorValue(ctx, "object is not a constructor")
		return nil
	}
	obj, exc := rec.construct(goCtx(ctx), goObject(constructor), goArgs(argc, argv))
	if exc != 0 {
		*exception = cValue(exc)
		return nil
	}
	if obj == 0 {
		*exception = errorValue(ctx, "constructor returned no object")
		return nil
	}
	return cObject(obj)
}

//export jscgoFinalize
func jscgoFinalize(object C.JSObjectRef) {
	p := C.JSObjectGetPrivate(object)
	if p == nil {
		return
	}
	id := registry.ID(p)
	rec, ok := objects.Get(id)
	if !ok {
		return
	}
	// JSC finalizes once per class in the chain; the first call runs them all.
	objects.Delete(id)
	for _, fin := range rec.finalizers {
		runFinalizer(fin, goObject(object))
	}
}

func runFinalizer(fin FinalizeCallback, object ObjectRef) {
	defer func() { _ = recover() }()
	fin(object)
}
