package jsc

import (
	"sync/atomic"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// ownership guards one native reference. release runs the drop function at
// most once no matter how many callers race on it.
//
// Every native release and unprotect call in this package lives in this file.
type ownership struct {
	done atomic.Bool
	drop func()
}

func newOwnership(drop func()) *ownership {
	return &ownership{drop: drop}
}

// release reports whether this call performed the drop.
func (o *ownership) release() bool {
	if o == nil || !o.done.CompareAndSwap(false, true) {
		return false
	}
	o.drop()
	return true
}

func (o *ownership) released() bool {
	return o == nil || o.done.Load()
}

func ownGroup(api jscsys.API, ref jscsys.ContextGroupRef) *ownership {
	return newOwnership(func() { api.ContextGroupRelease(ref) })
}

// ownContext unprotects the values still owned by the context before
// releasing the context itself.
func ownContext(api jscsys.API, ref jscsys.ContextRef, values *valueSet) *ownership {
	return newOwnership(func() {
		for _, o := range values.take() {
			o.release()
		}
		api.GlobalContextRelease(ref)
	})
}

func ownValue(api jscsys.API, ctx jscsys.ContextRef, ref jscsys.ValueRef) *ownership {
	return newOwnership(func() { api.ValueUnprotect(ctx, ref) })
}

func ownString(api jscsys.API, ref jscsys.StringRef) *ownership {
	return newOwnership(func() { api.StringRelease(ref) })
}

func ownClass(api jscsys.API, ref jscsys.ClassRef) *ownership {
	return newOwnership(func() { api.ClassRelease(ref) })
}

// releaseString drops a short-lived string created for a single call.
func releaseString(api jscsys.API, ref jscsys.StringRef) {
	if ref != 0 {
		api.StringRelease(ref)
	}
}

func releaseNameArray(api jscsys.API, ref jscsys.PropertyNameArrayRef) {
	if ref != 0 {
		api.PropertyNameArrayRelease(ref)
	}
}
