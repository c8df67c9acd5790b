package jsc

import (
	"context"
	"errors"
	"fmt"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// FunctionCallback implements a host function. this is nil when the engine
// passed no receiver. A returned error is thrown into JavaScript: an
// *Exception rethrows its value, anything else becomes an Error with the
// error text. A nil result is undefined.
//
// this and args are owned by the callback. Each one holds an engine
// protection until it is freed, collected by a Go finalizer, or its context
// is released. A function called in a hot loop should Free what it does not
// keep.
type FunctionCallback func(ctx *Context, this *Object, args []*Value) (*Value, error)

// ConstructorCallback implements `new` for a class. It must return an object.
// constructor and args follow the ownership rules of FunctionCallback.
type ConstructorCallback func(ctx *Context, constructor *Object, args []*Value) (*Object, error)

// NewFunction creates a host function named name.
func (c *Context) NewFunction(name string, fn FunctionCallback) (*Object, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, errors.New("jsc: nil FunctionCallback")
	}
	var nameRef jscsys.StringRef
	if name != "" {
		nameRef = jsString(c.api, name)
		defer releaseString(c.api, nameRef)
	}
	o := c.wrapObject(c.api.ObjectMakeFunctionWithCallback(c.ref, nameRef, c.group.functionCallback(fn)))
	if o == nil {
		return nil, &AllocationError{Op: "create function " + name}
	}
	return o, nil
}

// functionCallback adapts fn to the raw callback shape. It holds the group,
// not a Context, and resolves the calling context on every call.
func (g *ContextGroup) functionCallback(fn FunctionCallback) jscsys.FunctionCallback {
	return func(ctxRef jscsys.ContextRef, _ jscsys.ObjectRef, this jscsys.ObjectRef, args []jscsys.ValueRef) (jscsys.ValueRef, jscsys.ValueRef) {
		c := g.lookup(ctxRef)
		if c == nil {
			return 0, 0
		}
		var thisObj *Object
		if this != 0 {
			thisObj = c.wrapObject(this)
		}
		vals := c.wrapAll(args)

		var result *Value
		err := c.invoke(func() (err error) {
			result, err = fn(c, thisObj, vals)
			return err
		})
		if err == nil && result != nil {
			var ref jscsys.ValueRef
			if ref, err = c.valueRef(result); err == nil {
				return ref, 0
			}
		}
		if err != nil {
			return 0, c.throwable(err)
		}
		return 0, 0
	}
}

func (g *ContextGroup) constructorCallback(fn ConstructorCallback) jscsys.ConstructorCallback {
	return func(ctxRef jscsys.ContextRef, constructor jscsys.ObjectRef, args []jscsys.ValueRef) (jscsys.ObjectRef, jscsys.ValueRef) {
		c := g.lookup(ctxRef)
		if c == nil {
			return 0, 0
		}
		ctor := c.wrapObject(constructor)
		vals := c.wrapAll(args)

		var result *Object
		err := c.invoke(func() (err error) {
			result, err = fn(c, ctor, vals)
			return err
		})
		if err == nil {
			if result == nil {
				err = errors.New("constructor returned no object")
			} else {
				var ref jscsys.ObjectRef
				if ref, err = c.objectRef(result); err == nil {
					return ref, 0
				}
			}
		}
		return 0, c.throwable(err)
	}
}

// invoke runs a host callback, turning a panic into an error so it never
// unwinds through the engine.
func (c *Context) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error(context.Background(), "host callback panicked", "panic", r)
			err = fmt.Errorf("go callback panicked: %v", r)
		}
	}()
	return fn()
}

// throwable converts err into a value the engine can throw.
func (c *Context) throwable(err error) jscsys.ValueRef {
	var exc *Exception
	if errors.As(err, &exc) {
		if ref, e := c.valueRef(exc.value); e == nil && exc.value != nil {
			return ref
		}
	}
	obj, thrown := makeError(c.api, c.ref, err.Error())
	if thrown != 0 {
		return thrown
	}
	if obj == 0 {
		s := jsString(c.api, err.Error())
		defer releaseString(c.api, s)
		return c.api.ValueMakeString(c.ref, s)
	}
	return obj.Value()
}
