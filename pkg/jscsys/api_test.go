package jscsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "undefined", TypeUndefined.String())
	assert.Equal(t, "bigint", TypeBigInt.String())
	assert.Equal(t, "unknown", Type(42).String())
}

func TestTypedArrayType(t *testing.T) {
	cases := []struct {
		kind TypedArrayType
		name string
		size int
	}{
		{TypedArrayInt8, "Int8Array", 1},
		{TypedArrayUint8Clamped, "Uint8ClampedArray", 1},
		{TypedArrayUint16, "Uint16Array", 2},
		{TypedArrayFloat32, "Float32Array", 4},
		{TypedArrayFloat64, "Float64Array", 8},
		{TypedArrayBigUint64, "BigUint64Array", 8},
		{TypedArrayArrayBuffer, "ArrayBuffer", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.kind.String())
		assert.Equal(t, tc.size, tc.kind.ElementSize(), tc.name)
		got, ok := TypedArrayTypeByName(tc.name)
		assert.True(t, ok)
		assert.Equal(t, tc.kind, got)
	}

	_, ok := TypedArrayTypeByName("DataView")
	assert.False(t, ok)
}

func TestObjectRefIsValueRef(t *testing.T) {
	assert.Equal(t, ValueRef(0x1234), ObjectRef(0x1234).Value())
}
