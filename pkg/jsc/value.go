package jsc

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"runtime"
	"slices"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// Value is a protected JavaScript value. It stays valid across collections
// until Free is called or its Context is released.
type Value struct {
	ctx *Context
	ref jscsys.ValueRef
	own *ownership
}

// Context returns the context the value was created in.
func (v *Value) Context() *Context { return v.ctx }

// Free unprotects the value. Further calls are no-ops, as are calls after the
// owning Context was released.
func (v *Value) Free() {
	if v == nil || v.own == nil {
		return
	}
	c := v.ctx
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.own.released() {
		return
	}
	if v.own.release() {
		c.values.remove(v.own)
		runtime.SetFinalizer(v, nil)
	}
}

func (v *Value) live() error {
	if v == nil || v.own.released() || v.ctx.live() != nil {
		return ErrReleased
	}
	return nil
}

func (v *Value) api() jscsys.API { return v.ctx.api }

// =====================
// Constructors
// =====================

// NewUndefined returns undefined.
func (c *Context) NewUndefined() (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.wrap(c.api.ValueMakeUndefined(c.ref)), nil
}

// NewNull returns null.
func (c *Context) NewNull() (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.wrap(c.api.ValueMakeNull(c.ref)), nil
}

func (c *Context) NewBoolean(b bool) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.wrap(c.api.ValueMakeBoolean(c.ref, b)), nil
}

func (c *Context) NewNumber(n float64) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	return c.wrap(c.api.ValueMakeNumber(c.ref, n)), nil
}

// NewString returns a string value. NUL bytes are kept.
func (c *Context) NewString(s string) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref := jsString(c.api, s)
	defer releaseString(c.api, ref)
	return c.wrap(c.api.ValueMakeString(c.ref, ref)), nil
}

// NewStringUTF16 returns a string value holding exactly units.
func (c *Context) NewStringUTF16(units []uint16) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref := c.api.StringCreateWithCharacters(units)
	defer releaseString(c.api, ref)
	return c.wrap(c.api.ValueMakeString(c.ref, ref)), nil
}

// NewSymbol returns a fresh symbol with the given description.
func (c *Context) NewSymbol(description string) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref := jsString(c.api, description)
	defer releaseString(c.api, ref)
	v := c.wrap(c.api.ValueMakeSymbol(c.ref, ref))
	if v == nil {
		return nil, &AllocationError{Op: "create symbol"}
	}
	return v, nil
}

// NewFromJSON parses a JSON document.
func (c *Context) NewFromJSON(doc string) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref := jsString(c.api, doc)
	defer releaseString(c.api, ref)
	v := c.wrap(c.api.ValueMakeFromJSONString(c.ref, ref))
	if v == nil {
		return nil, &ConversionError{From: TypeString, To: "value", Err: fmt.Errorf("invalid JSON")}
	}
	return v, nil
}

// ValueOf converts a Go value: nil, bool, integers, floats, string, []byte
// (as a Uint8Array), []any, map[string]any and *Value, recursively. A *Value
// or *Object is returned as is, not copied.
func (c *Context) ValueOf(x any) (*Value, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	switch x := x.(type) {
	case nil:
		return c.NewNull()
	case *Value:
		if x == nil {
			return c.NewNull()
		}
		if _, err := c.valueRef(x); err != nil {
			return nil, err
		}
		return x, nil
	case *Object:
		if x == nil {
			return c.NewNull()
		}
		return c.ValueOf(x.Value)
	case bool:
		return c.NewBoolean(x)
	case string:
		return c.NewString(x)
	case []byte:
		a, err := c.NewUint8Array(x)
		if err != nil {
			return nil, err
		}
		return a.Value, nil
	case []any:
		elems := make([]*Value, len(x))
		defer func() {
			for i, e := range elems {
				freeConverted(x[i], e)
			}
		}()
		for i, e := range x {
			v, err := c.ValueOf(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		arr, err := c.NewArray(elems...)
		if err != nil {
			return nil, err
		}
		return arr.Value, nil
	case map[string]any:
		obj, err := c.NewObject()
		if err != nil {
			return nil, err
		}
		for _, k := range slices.Sorted(maps.Keys(x)) {
			v, err := c.ValueOf(x[k])
			if err != nil {
				return nil, err
			}
			err = obj.SetProperty(k, v)
			freeConverted(x[k], v)
			if err != nil {
				return nil, err
			}
		}
		return obj.Value, nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return c.NewNumber(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return c.NewNumber(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return c.NewNumber(rv.Float())
	}
	return nil, &ConversionError{From: TypeUndefined, To: fmt.Sprintf("JavaScript (from Go %T)", x)}
}

// freeConverted frees v when ValueOf created it from in.
func freeConverted(in any, v *Value) {
	switch in.(type) {
	case *Value, *Object:
		return
	}
	v.Free()
}

// =====================
// Queries
// =====================

// Type returns the value's type tag.
func (v *Value) Type() (Type, error) {
	if err := v.live(); err != nil {
		return TypeUndefined, err
	}
	return v.api().ValueGetType(v.ctx.ref, v.ref), nil
}

// typeOf is Type for error messages; a released value reads as undefined.
func (v *Value) typeOf() Type {
	t, _ := v.Type()
	return t
}

// The Is* predicates report false for a released value.

func (v *Value) IsUndefined() bool {
	return v.live() == nil && v.api().ValueIsUndefined(v.ctx.ref, v.ref)
}

func (v *Value) IsNull() bool {
	return v.live() == nil && v.api().ValueIsNull(v.ctx.ref, v.ref)
}

func (v *Value) IsBoolean() bool {
	return v.live() == nil && v.api().ValueIsBoolean(v.ctx.ref, v.ref)
}

func (v *Value) IsNumber() bool {
	return v.live() == nil && v.api().ValueIsNumber(v.ctx.ref, v.ref)
}

func (v *Value) IsString() bool {
	return v.live() == nil && v.api().ValueIsString(v.ctx.ref, v.ref)
}

func (v *Value) IsSymbol() bool {
	return v.live() == nil && v.api().ValueIsSymbol(v.ctx.ref, v.ref)
}

func (v *Value) IsObject() bool {
	return v.live() == nil && v.api().ValueIsObject(v.ctx.ref, v.ref)
}

func (v *Value) IsArray() bool {
	return v.live() == nil && v.api().ValueIsArray(v.ctx.ref, v.ref)
}

func (v *Value) IsDate() bool {
	return v.live() == nil && v.api().ValueIsDate(v.ctx.ref, v.ref)
}

// IsObjectOfClass reports whether v was instantiated from class or a class
// derived from it.
func (v *Value) IsObjectOfClass(class *Class) bool {
	if v.live() != nil || class.live() != nil {
		return false
	}
	return v.api().ValueIsObjectOfClass(v.ctx.ref, v.ref, class.ref)
}

// IsTypedArray reports whether v is a typed array view.
func (v *Value) IsTypedArray() bool {
	return typedArrayKind(v) != jscsys.TypedArrayNone
}

func typedArrayKind(v *Value) TypedArrayKind {
	if v.live() != nil {
		return jscsys.TypedArrayNone
	}
	kind, exc := v.api().ValueGetTypedArrayType(v.ctx.ref, v.ref)
	if exc != 0 || kind == jscsys.TypedArrayArrayBuffer {
		return jscsys.TypedArrayNone
	}
	return kind
}

// Equals compares with JavaScript == semantics. Conversion may run script
// and throw.
func (v *Value) Equals(other *Value) (bool, error) {
	if err := v.live(); err != nil {
		return false, err
	}
	o, err := v.ctx.valueRef(other)
	if err != nil {
		return false, err
	}
	eq, exc := v.api().ValueIsEqual(v.ctx.ref, v.ref, o)
	if exc != 0 {
		return false, v.ctx.exception(exc)
	}
	return eq, nil
}

// StrictEquals compares with === semantics.
func (v *Value) StrictEquals(other *Value) (bool, error) {
	if err := v.live(); err != nil {
		return false, err
	}
	o, err := v.ctx.valueRef(other)
	if err != nil {
		return false, err
	}
	return v.api().ValueIsStrictEqual(v.ctx.ref, v.ref, o), nil
}

// InstanceOf evaluates `v instanceof constructor`.
func (v *Value) InstanceOf(constructor *Object) (bool, error) {
	if err := v.live(); err != nil {
		return false, err
	}
	if constructor == nil {
		return false, &ConversionError{From: TypeUndefined, To: "constructor"}
	}
	ctor, err := v.ctx.objectRef(constructor)
	if err != nil {
		return false, err
	}
	ok, exc := v.api().ValueIsInstanceOfConstructor(v.ctx.ref, v.ref, ctor)
	if exc != 0 {
		return false, v.ctx.exception(exc)
	}
	return ok, nil
}

// =====================
// Conversions
// =====================

// ToBoolean applies JavaScript truthiness.
func (v *Value) ToBoolean() (bool, error) {
	if err := v.live(); err != nil {
		return false, err
	}
	return v.api().ValueToBoolean(v.ctx.ref, v.ref), nil
}

// ToNumber applies JavaScript numeric conversion.
func (v *Value) ToNumber() (float64, error) {
	if err := v.live(); err != nil {
		return 0, err
	}
	n, exc := v.api().ValueToNumber(v.ctx.ref, v.ref)
	if exc != 0 {
		return 0, &ConversionError{From: v.typeOf(), To: "number", Err: v.ctx.exception(exc)}
	}
	return n, nil
}

// ToJSString converts to an owned engine string without loss.
func (v *Value) ToJSString() (*String, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	ref, exc := v.api().ValueToStringCopy(v.ctx.ref, v.ref)
	if exc != 0 {
		return nil, &ConversionError{From: v.typeOf(), To: "string", Err: v.ctx.exception(exc)}
	}
	return adoptString(v.api(), ref)
}

// ToString converts with JavaScript String() semantics. The code units are
// copied once. Symbols fail with a *ConversionError.
func (v *Value) ToString() (string, error) {
	if err := v.live(); err != nil {
		return "", err
	}
	ref, exc := v.api().ValueToStringCopy(v.ctx.ref, v.ref)
	if exc != 0 {
		return "", &ConversionError{From: v.typeOf(), To: "string", Err: v.ctx.exception(exc)}
	}
	defer releaseString(v.api(), ref)
	return goString(v.api(), ref), nil
}

// ToObject converts with Object() semantics. undefined and null fail.
func (v *Value) ToObject() (*Object, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	ref, exc := v.api().ValueToObject(v.ctx.ref, v.ref)
	if exc != 0 {
		return nil, &ConversionError{From: v.typeOf(), To: "object", Err: v.ctx.exception(exc)}
	}
	return v.ctx.wrapObject(ref), nil
}

// ToTypedArray views v as a typed array.
func (v *Value) ToTypedArray() (*TypedArray, error) {
	if err := v.live(); err != nil {
		return nil, err
	}
	kind := typedArrayKind(v)
	if kind == jscsys.TypedArrayNone {
		return nil, &ConversionError{From: v.typeOf(), To: "typed array"}
	}
	obj, err := v.ToObject()
	if err != nil {
		return nil, err
	}
	return &TypedArray{Object: obj, kind: kind}, nil
}

// ToJSON serialises v with JSON.stringify. indent is the number of spaces per
// level. Values JSON cannot represent, such as undefined and functions, fail
// with a *ConversionError.
func (v *Value) ToJSON(indent int) (string, error) {
	if err := v.live(); err != nil {
		return "", err
	}
	ref, exc := v.api().ValueCreateJSONString(v.ctx.ref, v.ref, indent)
	if exc != 0 {
		return "", &ConversionError{From: v.typeOf(), To: "JSON", Err: v.ctx.exception(exc)}
	}
	if ref == 0 {
		return "", &ConversionError{From: v.typeOf(), To: "JSON"}
	}
	defer releaseString(v.api(), ref)
	return goString(v.api(), ref), nil
}

// Export converts v to a Go value: nil for undefined and null, bool, float64,
// string, and for objects the result of decoding their JSON form.
func (v *Value) Export() (any, error) {
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeUndefined, TypeNull:
		return nil, nil
	case TypeBoolean:
		return v.ToBoolean()
	case TypeNumber:
		return v.ToNumber()
	case TypeString:
		return v.ToString()
	case TypeObject:
		doc, err := v.ToJSON(0)
		if err != nil {
			return nil, err
		}
		var out any
		if err := json.Unmarshal([]byte(doc), &out); err != nil {
			return nil, &ConversionError{From: t, To: "Go value", Err: err}
		}
		return out, nil
	}
	return nil, &ConversionError{From: t, To: "Go value"}
}
