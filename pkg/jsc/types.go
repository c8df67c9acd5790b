package jsc

import "github.com/javascriptcore-go/jsc/pkg/jscsys"

// Type is the JavaScript type tag of a Value.
type Type = jscsys.Type

const (
	TypeUndefined = jscsys.TypeUndefined
	TypeNull      = jscsys.TypeNull
	TypeBoolean   = jscsys.TypeBoolean
	TypeNumber    = jscsys.TypeNumber
	TypeString    = jscsys.TypeString
	TypeObject    = jscsys.TypeObject
	TypeSymbol    = jscsys.TypeSymbol
	TypeBigInt    = jscsys.TypeBigInt
)

// TypedArrayKind identifies the element type of a TypedArray.
type TypedArrayKind = jscsys.TypedArrayType

const (
	Int8Array         = jscsys.TypedArrayInt8
	Int16Array        = jscsys.TypedArrayInt16
	Int32Array        = jscsys.TypedArrayInt32
	Uint8Array        = jscsys.TypedArrayUint8
	Uint8ClampedArray = jscsys.TypedArrayUint8Clamped
	Uint16Array       = jscsys.TypedArrayUint16
	Uint32Array       = jscsys.TypedArrayUint32
	Float32Array      = jscsys.TypedArrayFloat32
	Float64Array      = jscsys.TypedArrayFloat64
	BigInt64Array     = jscsys.TypedArrayBigInt64
	BigUint64Array    = jscsys.TypedArrayBigUint64
)

// PropertyAttributes control how SetProperty defines a property.
type PropertyAttributes = jscsys.PropertyAttributes

const (
	ReadOnly   = jscsys.PropertyAttributeReadOnly
	DontEnum   = jscsys.PropertyAttributeDontEnum
	DontDelete = jscsys.PropertyAttributeDontDelete
)
