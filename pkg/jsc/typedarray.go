package jsc

import "github.com/javascriptcore-go/jsc/pkg/jscsys"

// TypedArray is a typed array view such as Uint8Array or Float64Array.
type TypedArray struct {
	*Object
	kind TypedArrayKind
}

// NewTypedArray allocates a zero-filled typed array of length elements.
func (c *Context) NewTypedArray(kind TypedArrayKind, length int) (*TypedArray, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	if kind.ElementSize() == 0 {
		return nil, &ConversionError{From: TypeObject, To: kind.String()}
	}
	ref, exc := c.api.ObjectMakeTypedArray(c.ref, kind, length)
	if exc != 0 {
		return nil, c.exception(exc)
	}
	if ref == 0 {
		return nil, &AllocationError{Op: "create " + kind.String()}
	}
	return &TypedArray{Object: c.wrapObject(ref), kind: kind}, nil
}

// NewUint8Array copies data into a new Uint8Array.
func (c *Context) NewUint8Array(data []byte) (*TypedArray, error) {
	a, err := c.NewTypedArray(Uint8Array, len(data))
	if err != nil {
		return nil, err
	}
	buf, err := a.UnsafeBytes()
	if err != nil {
		a.Free()
		return nil, err
	}
	copy(buf, data)
	return a, nil
}

// Kind returns the element type.
func (a *TypedArray) Kind() TypedArrayKind { return a.kind }

// Len returns the number of elements.
func (a *TypedArray) Len() (int, error) {
	return a.measure(jscsys.API.ObjectGetTypedArrayLength)
}

// ByteOffset returns the offset of the view into its buffer.
func (a *TypedArray) ByteOffset() (int, error) {
	return a.measure(jscsys.API.ObjectGetTypedArrayByteOffset)
}

// ByteLength returns the size of the view in bytes.
func (a *TypedArray) ByteLength() (int, error) {
	return a.measure(jscsys.API.ObjectGetTypedArrayByteLength)
}

func (a *TypedArray) measure(fn func(jscsys.API, jscsys.ContextRef, jscsys.ObjectRef) (int, jscsys.ValueRef)) (int, error) {
	if err := a.live(); err != nil {
		return 0, err
	}
	n, exc := fn(a.api(), a.ctx.ref, a.objectRef())
	if exc != 0 {
		return 0, a.ctx.exception(exc)
	}
	return n, nil
}

// Bytes returns a copy of the bytes covered by the view.
func (a *TypedArray) Bytes() ([]byte, error) {
	b, err := a.UnsafeBytes()
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// UnsafeBytes returns the bytes covered by the view, aliasing engine memory.
// The slice is only valid until the next call into the engine.
func (a *TypedArray) UnsafeBytes() ([]byte, error) {
	if err := a.live(); err != nil {
		return nil, err
	}
	b, exc := a.api().ObjectGetTypedArrayBytes(a.ctx.ref, a.objectRef())
	if exc != 0 {
		return nil, a.ctx.exception(exc)
	}
	return b, nil
}
