package jscsys

// Opaque handles. A handle is the address of a native JavaScriptCore object
// (or a table key in a non-native implementation). Zero means NULL.
type (
	ContextGroupRef      uintptr
	ContextRef           uintptr
	ValueRef             uintptr
	ObjectRef            uintptr
	StringRef            uintptr
	ClassRef             uintptr
	PropertyNameArrayRef uintptr
)

// Value returns the object handle as a value handle. Every JSObjectRef is a
// valid JSValueRef.
func (o ObjectRef) Value() ValueRef { return ValueRef(o) }

// Type mirrors JSType.
type Type int

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeSymbol
	TypeBigInt
)

var typeNames = [...]string{"undefined", "null", "boolean", "number", "string", "object", "symbol", "bigint"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// TypedArrayType mirrors JSTypedArrayType.
type TypedArrayType int

const (
	TypedArrayInt8 TypedArrayType = iota
	TypedArrayInt16
	TypedArrayInt32
	TypedArrayUint8
	TypedArrayUint8Clamped
	TypedArrayUint16
	TypedArrayUint32
	TypedArrayFloat32
	TypedArrayFloat64
	TypedArrayArrayBuffer
	TypedArrayNone
	TypedArrayBigInt64
	TypedArrayBigUint64
)

var typedArrayNames = [...]string{
	"Int8Array", "Int16Array", "Int32Array", "Uint8Array", "Uint8ClampedArray",
	"Uint16Array", "Uint32Array", "Float32Array", "Float64Array", "ArrayBuffer",
	"None", "BigInt64Array", "BigUint64Array",
}

func (t TypedArrayType) String() string {
	if t < 0 || int(t) >= len(typedArrayNames) {
		return "unknown"
	}
	return typedArrayNames[t]
}

// ElementSize returns the size in bytes of one element, or 0 for
// ArrayBuffer and None.
func (t TypedArrayType) ElementSize() int {
	switch t {
	case TypedArrayInt8, TypedArrayUint8, TypedArrayUint8Clamped:
		return 1
	case TypedArrayInt16, TypedArrayUint16:
		return 2
	case TypedArrayInt32, TypedArrayUint32, TypedArrayFloat32:
		return 4
	case TypedArrayFloat64, TypedArrayBigInt64, TypedArrayBigUint64:
		return 8
	default:
		return 0
	}
}

// TypedArrayTypeByName is the inverse of TypedArrayType.String.
func TypedArrayTypeByName(name string) (TypedArrayType, bool) {
	for i, n := range typedArrayNames {
		if n == name {
			return TypedArrayType(i), true
		}
	}
	return TypedArrayNone, false
}

// PropertyAttributes mirrors JSPropertyAttributes.
type PropertyAttributes uint32

const (
	PropertyAttributeNone       PropertyAttributes = 0
	PropertyAttributeReadOnly   PropertyAttributes = 1 << 1
	PropertyAttributeDontEnum   PropertyAttributes = 1 << 2
	PropertyAttributeDontDelete PropertyAttributes = 1 << 3
)

// ClassAttributes mirrors JSClassAttributes.
type ClassAttributes uint32

const (
	ClassAttributeNone                 ClassAttributes = 0
	ClassAttributeNoAutomaticPrototype ClassAttributes = 1 << 1
)

// FunctionCallback is invoked when an object is called as a function. It
// returns the result, or a non-zero exception to throw.
type FunctionCallback func(ctx ContextRef, function, this ObjectRef, args []ValueRef) (result ValueRef, exception ValueRef)

// ConstructorCallback is invoked for `new`. It returns the constructed object,
// or a non-zero exception to throw.
type ConstructorCallback func(ctx ContextRef, constructor ObjectRef, args []ValueRef) (object ObjectRef, exception ValueRef)

// FinalizeCallback is invoked once when the collector reclaims an object of
// the class. No engine calls are allowed from inside it.
type FinalizeCallback func(object ObjectRef)

// ClassDefinition mirrors the subset of JSClassDefinition that crosses the
// Go boundary. Static values and functions are installed by callers.
type ClassDefinition struct {
	ClassName         string
	Attributes        ClassAttributes
	ParentClass       ClassRef
	CallAsFunction    FunctionCallback
	CallAsConstructor ConstructorCallback
	Finalize          FinalizeCallback
}

// API is the raw JavaScriptCore surface. Each method maps to exactly one C
// entry point (named in the method) and keeps its ownership rules:
// Create/Copy results are owned by the caller and must be released once,
// values must be protected to survive a collection. Exceptions are returned
// as a trailing ValueRef that is zero when nothing was thrown.
//
// Implementations are not safe for concurrent use on the same group.
type API interface {
	ContextGroupCreate() ContextGroupRef
	ContextGroupRetain(g ContextGroupRef) ContextGroupRef
	ContextGroupRelease(g ContextGroupRef)

	GlobalContextCreate(class ClassRef) ContextRef
	GlobalContextCreateInGroup(g ContextGroupRef, class ClassRef) ContextRef
	GlobalContextRetain(ctx ContextRef) ContextRef
	GlobalContextRelease(ctx ContextRef)
	GlobalContextCopyName(ctx ContextRef) StringRef
	GlobalContextSetName(ctx ContextRef, name StringRef)
	ContextGetGlobalObject(ctx ContextRef) ObjectRef
	ContextGetGroup(ctx ContextRef) ContextGroupRef
	ContextGetGlobalContext(ctx ContextRef) ContextRef

	EvaluateScript(ctx ContextRef, script StringRef, this ObjectRef, sourceURL StringRef, startingLine int) (ValueRef, ValueRef)
	CheckScriptSyntax(ctx ContextRef, script StringRef, sourceURL StringRef, startingLine int) (bool, ValueRef)
	GarbageCollect(ctx ContextRef)

	StringCreateWithCharacters(chars []uint16) StringRef
	StringCreateWithUTF8CString(s string) StringRef
	StringRetain(s StringRef) StringRef
	StringRelease(s StringRef)
	StringGetLength(s StringRef) int
	// StringGetCharacters copies the UTF-16 code units out of s.
	StringGetCharacters(s StringRef) []uint16
	StringGetUTF8CString(s StringRef) string
	StringIsEqual(a, b StringRef) bool
	StringIsEqualToUTF8CString(a StringRef, b string) bool

	ValueGetType(ctx ContextRef, v ValueRef) Type
	ValueIsUndefined(ctx ContextRef, v ValueRef) bool
	ValueIsNull(ctx ContextRef, v ValueRef) bool
	ValueIsBoolean(ctx ContextRef, v ValueRef) bool
	ValueIsNumber(ctx ContextRef, v ValueRef) bool
	ValueIsString(ctx ContextRef, v ValueRef) bool
	ValueIsSymbol(ctx ContextRef, v ValueRef) bool
	ValueIsObject(ctx ContextRef, v ValueRef) bool
	ValueIsObjectOfClass(ctx ContextRef, v ValueRef, class ClassRef) bool
	ValueIsArray(ctx ContextRef, v ValueRef) bool
	ValueIsDate(ctx ContextRef, v ValueRef) bool
	ValueGetTypedArrayType(ctx ContextRef, v ValueRef) (TypedArrayType, ValueRef)
	ValueIsEqual(ctx ContextRef, a, b ValueRef) (bool, ValueRef)
	ValueIsStrictEqual(ctx ContextRef, a, b ValueRef) bool
	ValueIsInstanceOfConstructor(ctx ContextRef, v ValueRef, constructor ObjectRef) (bool, ValueRef)

	ValueMakeUndefined(ctx ContextRef) ValueRef
	ValueMakeNull(ctx ContextRef) ValueRef
	ValueMakeBoolean(ctx ContextRef, b bool) ValueRef
	ValueMakeNumber(ctx ContextRef, n float64) ValueRef
	ValueMakeString(ctx ContextRef, s StringRef) ValueRef
	ValueMakeSymbol(ctx ContextRef, description StringRef) ValueRef
	// ValueMakeFromJSONString returns zero when the input is not valid JSON.
	ValueMakeFromJSONString(ctx ContextRef, s StringRef) ValueRef
	ValueCreateJSONString(ctx ContextRef, v ValueRef, indent int) (StringRef, ValueRef)

	ValueToBoolean(ctx ContextRef, v ValueRef) bool
	ValueToNumber(ctx ContextRef, v ValueRef) (float64, ValueRef)
	ValueToStringCopy(ctx ContextRef, v ValueRef) (StringRef, ValueRef)
	ValueToObject(ctx ContextRef, v ValueRef) (ObjectRef, ValueRef)

	ValueProtect(ctx ContextRef, v ValueRef)
	ValueUnprotect(ctx ContextRef, v ValueRef)

	ObjectMake(ctx ContextRef, class ClassRef) ObjectRef
	ObjectMakeFunctionWithCallback(ctx ContextRef, name StringRef, cb FunctionCallback) ObjectRef
	ObjectMakeArray(ctx ContextRef, elements []ValueRef) (ObjectRef, ValueRef)
	ObjectMakeError(ctx ContextRef, args []ValueRef) (ObjectRef, ValueRef)
	ObjectGetPrototype(ctx ContextRef, o ObjectRef) ValueRef
	ObjectSetPrototype(ctx ContextRef, o ObjectRef, proto ValueRef)
	ObjectHasProperty(ctx ContextRef, o ObjectRef, name StringRef) bool
	ObjectGetProperty(ctx ContextRef, o ObjectRef, name StringRef) (ValueRef, ValueRef)
	ObjectSetProperty(ctx ContextRef, o ObjectRef, name StringRef, v ValueRef, attrs PropertyAttributes) ValueRef
	ObjectDeleteProperty(ctx ContextRef, o ObjectRef, name StringRef) (bool, ValueRef)
	ObjectGetPropertyAtIndex(ctx ContextRef, o ObjectRef, index uint32) (ValueRef, ValueRef)
	ObjectSetPropertyAtIndex(ctx ContextRef, o ObjectRef, index uint32, v ValueRef) ValueRef
	ObjectIsFunction(ctx ContextRef, o ObjectRef) bool
	ObjectCallAsFunction(ctx ContextRef, o ObjectRef, this ObjectRef, args []ValueRef) (ValueRef, ValueRef)
	ObjectIsConstructor(ctx ContextRef, o ObjectRef) bool
	ObjectCallAsConstructor(ctx ContextRef, o ObjectRef, args []ValueRef) (ObjectRef, ValueRef)

	ObjectCopyPropertyNames(ctx ContextRef, o ObjectRef) PropertyNameArrayRef
	PropertyNameArrayRetain(a PropertyNameArrayRef) PropertyNameArrayRef
	PropertyNameArrayRelease(a PropertyNameArrayRef)
	PropertyNameArrayGetCount(a PropertyNameArrayRef) int
	// PropertyNameArrayGetNameAtIndex returns a string owned by the array.
	PropertyNameArrayGetNameAtIndex(a PropertyNameArrayRef, index int) StringRef

	ClassCreate(def *ClassDefinition) ClassRef
	ClassRetain(c ClassRef) ClassRef
	ClassRelease(c ClassRef)

	ObjectMakeTypedArray(ctx ContextRef, kind TypedArrayType, length int) (ObjectRef, ValueRef)
	// ObjectGetTypedArrayBytes returns the bytes in the array's own window of
	// its backing buffer. The slice aliases engine memory and is only valid
	// until the next call into the engine.
	ObjectGetTypedArrayBytes(ctx ContextRef, o ObjectRef) ([]byte, ValueRef)
	ObjectGetTypedArrayLength(ctx ContextRef, o ObjectRef) (int, ValueRef)
	ObjectGetTypedArrayByteLength(ctx ContextRef, o ObjectRef) (int, ValueRef)
	ObjectGetTypedArrayByteOffset(ctx ContextRef, o ObjectRef) (int, ValueRef)
}
