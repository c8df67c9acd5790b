package jsc

import (
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// Object is an object Value with property access and invocation.
type Object struct {
	*Value
}

// NewObject creates an empty plain object.
func (c *Context) NewObject() (*Object, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	o := c.wrapObject(c.api.ObjectMake(c.ref, 0))
	if o == nil {
		return nil, &AllocationError{Op: "create object"}
	}
	return o, nil
}

// NewArray creates an array holding elems. A nil element is undefined.
func (c *Context) NewArray(elems ...*Value) (*Object, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	refs, err := c.valueRefs(elems)
	if err != nil {
		return nil, err
	}
	ref, exc := c.api.ObjectMakeArray(c.ref, refs)
	if exc != 0 {
		return nil, c.exception(exc)
	}
	if ref == 0 {
		return nil, &AllocationError{Op: "create array"}
	}
	return c.wrapObject(ref), nil
}

// NewError creates an Error object with the given message.
func (c *Context) NewError(message string) (*Object, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref, exc := makeError(c.api, c.ref, message)
	if exc != 0 {
		return nil, c.exception(exc)
	}
	if ref == 0 {
		return nil, &AllocationError{Op: "create error"}
	}
	return c.wrapObject(ref), nil
}

func makeError(api jscsys.API, ctx jscsys.ContextRef, message string) (jscsys.ObjectRef, jscsys.ValueRef) {
	s := jsString(api, message)
	defer releaseString(api, s)
	msg := api.ValueMakeString(ctx, s)
	return api.ObjectMakeError(ctx, []jscsys.ValueRef{msg})
}

// AsObject views v as an object without conversion. It fails with a
// *ConversionError when v is not an object.
func (v *Value) AsObject() (*Object, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	if !v.IsObject() {
		return nil, &ConversionError{From: v.typeOf(), To: "object"}
	}
	return &Object{Value: v}, nil
}

func (o *Object) objectRef() jscsys.ObjectRef { return jscsys.ObjectRef(o.ref) }

func (o *Object) live() error {
	if o == nil {
		return ErrReleased
	}
	return o.Value.live()
}

// HasProperty reports whether name is present on o or its prototype chain.
func (o *Object) HasProperty(name string) (bool, error) {
	if err := o.live(); err != nil {
		return false, err
	}
	k := jsString(o.api(), name)
	defer releaseString(o.api(), k)
	return o.api().ObjectHasProperty(o.ctx.ref, o.objectRef(), k), nil
}

// Property reads o[name].
func (o *Object) Property(name string) (*Value, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	k := jsString(o.api(), name)
	defer releaseString(o.api(), k)
	ref, exc := o.api().ObjectGetProperty(o.ctx.ref, o.objectRef(), k)
	if exc != 0 {
		return nil, o.ctx.exception(exc)
	}
	return o.ctx.wrap(ref), nil
}

// SetProperty writes o[name] = v. With attributes the property is defined
// with them, unless it already exists.
func (o *Object) SetProperty(name string, v *Value, attrs ...PropertyAttributes) error {
	if err := o.live(); err != nil {
		return err
	}
	ref, err := o.ctx.valueRef(v)
	if err != nil {
		return err
	}
	var a PropertyAttributes
	for _, x := range attrs {
		a |= x
	}
	k := jsString(o.api(), name)
	defer releaseString(o.api(), k)
	if exc := o.api().ObjectSetProperty(o.ctx.ref, o.objectRef(), k, ref, a); exc != 0 {
		return o.ctx.exception(exc)
	}
	return nil
}

// DeleteProperty removes o[name]. It reports false for a non-configurable
// property.
func (o *Object) DeleteProperty(name string) (bool, error) {
	if err := o.live(); err != nil {
		return false, err
	}
	k := jsString(o.api(), name)
	defer releaseString(o.api(), k)
	ok, exc := o.api().ObjectDeleteProperty(o.ctx.ref, o.objectRef(), k)
	if exc != 0 {
		return false, o.ctx.exception(exc)
	}
	return ok, nil
}

// PropertyAtIndex reads o[i].
func (o *Object) PropertyAtIndex(i uint32) (*Value, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	ref, exc := o.api().ObjectGetPropertyAtIndex(o.ctx.ref, o.objectRef(), i)
	if exc != 0 {
		return nil, o.ctx.exception(exc)
	}
	return o.ctx.wrap(ref), nil
}

// SetPropertyAtIndex writes o[i] = v.
func (o *Object) SetPropertyAtIndex(i uint32, v *Value) error {
	if err := o.live(); err != nil {
		return err
	}
	ref, err := o.ctx.valueRef(v)
	if err != nil {
		return err
	}
	if exc := o.api().ObjectSetPropertyAtIndex(o.ctx.ref, o.objectRef(), i, ref); exc != 0 {
		return o.ctx.exception(exc)
	}
	return nil
}

// PropertyNames lists the enumerable property names of o and its prototype
// chain, in engine order.
func (o *Object) PropertyNames() ([]string, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	arr := o.api().ObjectCopyPropertyNames(o.ctx.ref, o.objectRef())
	if arr == 0 {
		return nil, &AllocationError{Op: "copy property names"}
	}
	defer releaseNameArray(o.api(), arr)

	n := o.api().PropertyNameArrayGetCount(arr)
	names := make([]string, n)
	for i := range names {
		names[i] = goString(o.api(), o.api().PropertyNameArrayGetNameAtIndex(arr, i))
	}
	return names, nil
}

// IsFunction reports whether o can be called.
func (o *Object) IsFunction() bool {
	return o.live() == nil && o.api().ObjectIsFunction(o.ctx.ref, o.objectRef())
}

// IsConstructor reports whether o can be used with new.
func (o *Object) IsConstructor() bool {
	return o.live() == nil && o.api().ObjectIsConstructor(o.ctx.ref, o.objectRef())
}

// Call invokes o as a function. A nil this is the global object.
func (o *Object) Call(this *Object, args ...*Value) (*Value, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	thisRef, err := o.ctx.objectRef(this)
	if err != nil {
		return nil, err
	}
	refs, err := o.ctx.valueRefs(args)
	if err != nil {
		return nil, err
	}
	ref, exc := o.api().ObjectCallAsFunction(o.ctx.ref, o.objectRef(), thisRef, refs)
	if exc != 0 {
		return nil, o.ctx.exception(exc)
	}
	return o.ctx.wrap(ref), nil
}

// Construct evaluates `new o(...args)`.
func (o *Object) Construct(args ...*Value) (*Object, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	refs, err := o.ctx.valueRefs(args)
	if err != nil {
		return nil, err
	}
	ref, exc := o.api().ObjectCallAsConstructor(o.ctx.ref, o.objectRef(), refs)
	if exc != 0 {
		return nil, o.ctx.exception(exc)
	}
	if ref == 0 {
		return nil, &AllocationError{Op: "construct"}
	}
	return o.ctx.wrapObject(ref), nil
}

// Prototype returns o's prototype, which may be null.
func (o *Object) Prototype() (*Value, error) {
	if err := o.live(); err != nil {
		return nil, err
	}
	return o.ctx.wrap(o.api().ObjectGetPrototype(o.ctx.ref, o.objectRef())), nil
}

// SetPrototype replaces o's prototype. proto must be an object or null.
func (o *Object) SetPrototype(proto *Value) error {
	if err := o.live(); err != nil {
		return err
	}
	ref, err := o.ctx.valueRef(proto)
	if err != nil {
		return err
	}
	o.api().ObjectSetPrototype(o.ctx.ref, o.objectRef(), ref)
	return nil
}
