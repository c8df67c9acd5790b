//go:build cgo && (darwin || linux)

package jscsys

/*
#include <stdlib.h>
#include <JavaScriptCore/JavaScript.h>

extern JSValueRef jscgoCallAsFunction(JSContextRef, JSObjectRef, JSObjectRef, size_t, JSValueRef*, JSValueRef*);
extern JSObjectRef jscgoCallAsConstructor(JSContextRef, JSObjectRef, size_t, JSValueRef*, JSValueRef*);
extern void jscgoFinalize(JSObjectRef);

static JSValueRef jscgo_call_as_function(JSContextRef ctx, JSObjectRef function, JSObjectRef this_object,
		size_t argc, const JSValueRef argv[], JSValueRef* exception) {
	return jscgoCallAsFunction(ctx, function, this_object, argc, (JSValueRef*)argv, exception);
}

static JSObjectRef jscgo_call_as_constructor(JSContextRef ctx, JSObjectRef constructor,
		size_t argc, const JSValueRef argv[], JSValueRef* exception) {
	return jscgoCallAsConstructor(ctx, constructor, argc, (JSValueRef*)argv, exception);
}

static void jscgo_finalize(JSObjectRef object) {
	jscgoFinalize(object);
}

// Every class gets the finalize trampoline so the Go record behind the
// object's private data is always dropped.
static JSClassRef jscgo_class_create(const char* name, JSClassAttributes attributes, JSClassRef parent,
		int has_call, int has_construct) {
	JSClassDefinition def = kJSClassDefinitionEmpty;
	def.className = name;
	def.attributes = attributes;
	def.parentClass = parent;
	def.finalize = jscgo_finalize;
	if (has_call) {
		def.callAsFunction = jscgo_call_as_function;
	}
	if (has_construct) {
		def.callAsConstructor = jscgo_call_as_constructor;
	}
	return JSClassCreate(&def);
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/javascriptcore-go/jsc/internal/registry"
)

// objectRecord is the Go side of an object created from a Go-defined class.
// Its registry ID is the object's private data. finalizers run derived
// class first.
type objectRecord struct {
	call       FunctionCallback
	construct  ConstructorCallback
	finalizers []FinalizeCallback
}

// classEntry tracks the callbacks of a class created through ClassCreate.
// refs mirrors the native retain count so the entry can be dropped.
// parent is nil when the parent class was not created through ClassCreate.
type classEntry struct {
	def    ClassDefinition
	parent *classEntry
	refs   int
}

var objects registry.Table[*objectRecord]

type native struct {
	mu      sync.Mutex
	classes map[ClassRef]*classEntry
	fnClass C.JSClassRef
}

var (
	nativeOnce sync.Once
	nativeAPI  *native
)

// Native returns the cgo implementation of API. It is a process-wide
// singleton.
func Native() (API, error) {
	nativeOnce.Do(func() {
		nativeAPI = &native{classes: make(map[ClassRef]*classEntry)}
	})
	return nativeAPI, nil
}

// =====================
// Handle conversion
// =====================

//nolint:govet // handles are native addresses carried as uintptr
func ptr[T ~uintptr](h T) unsafe.Pointer { return unsafe.Pointer(uintptr(h)) }

func cGroup(h ContextGroupRef) C.JSContextGroupRef { return C.JSContextGroupRef(ptr(h)) }
func cCtx(h ContextRef) C.JSContextRef { return C.JSContextRef(ptr(h)) }
func cGlobal(h ContextRef) C.JSGlobalContextRef { return C.JSGlobalContextRef(ptr(h)) }
func cValue(h ValueRef) C.JSValueRef { return C.JSValueRef(ptr(h)) }
func cObject(h ObjectRef) C.JSObjectRef { return C.JSObjectRef(ptr(h)) }
func cString(h StringRef) C.JSStringRef { return C.JSStringRef(ptr(h)) }
func cClass(h ClassRef) C.JSClassRef { return C.JSClassRef(ptr(h)) }
func cNames(h PropertyNameArrayRef) C.JSPropertyNameArrayRef {
	return C.JSPropertyNameArrayRef(ptr(h))
}

func goGroup(p C.JSContextGroupRef) ContextGroupRef { return ContextGroupRef(uintptr(unsafe.Pointer(p))) }
func goCtx(p C.JSContextRef) ContextRef { return ContextRef(uintptr(unsafe.Pointer(p))) }
func goGlobal(p C.JSGlobalContextRef) ContextRef { return ContextRef(uintptr(unsafe.Pointer(p))) }
func goValue(p C.JSValueRef) ValueRef { return ValueRef(uintptr(unsafe.Pointer(p))) }
func goObject(p C.JSObjectRef) ObjectRef { return ObjectRef(uintptr(unsafe.Pointer(p))) }
func goString(p C.JSStringRef) StringRef { return StringRef(uintptr(unsafe.Pointer(p))) }
func goClass(p C.JSClassRef) ClassRef { return ClassRef(uintptr(unsafe.Pointer(p))) }
func goNames(p C.JSPropertyNameArrayRef) PropertyNameArrayRef {
	return PropertyNameArrayRef(uintptr(unsafe.Pointer(p)))
}

// valueArray copies handles into a Go-owned C array. The array holds only C
// pointers, so it may be passed to C directly.
func valueArray(args []ValueRef) (*C.JSValueRef, C.size_t) {
	if len(args) == 0 {
		return nil, 0
	}
	arr := make([]C.JSValueRef, len(args))
	for i, a := range args {
		arr[i] = cValue(a)
	}
	return &arr[0], C.size_t(len(arr))
}

func goArgs(argc C.size_t, argv *C.JSValueRef) []ValueRef {
	if argc == 0 || argv == nil {
		return nil
	}
	src := unsafe.Slice(argv, int(argc))
	args := make([]ValueRef, len(src))
	for i, a := range src {
		args[i] = goValue(a)
	}
	return args
}

// =====================
// Context groups and contexts
// =====================

func (n *native) ContextGroupCreate() ContextGroupRef {
	return goGroup(C.JSContextGroupCreate())
}

func (n *native) ContextGroupRetain(g ContextGroupRef) ContextGroupRef {
	return goGroup(C.JSContextGroupRetain(cGroup(g)))
}

func (n *native) ContextGroupRelease(g ContextGroupRef) {
	C.JSContextGroupRelease(cGroup(g))
}

func (n *native) GlobalContextCreate(class ClassRef) ContextRef {
	ctx := goGlobal(C.JSGlobalContextCreate(cClass(class)))
	n.attachGlobal(ctx, class)
	return ctx
}

func (n *native) GlobalContextCreateInGroup(g ContextGroupRef, class ClassRef) ContextRef {
	ctx := goGlobal(C.JSGlobalContextCreateInGroup(cGroup(g), cClass(class)))
	n.attachGlobal(ctx, class)
	return ctx
}

// attachGlobal gives a class-backed global object its callback record.
func (n *native) attachGlobal(ctx ContextRef, class ClassRef) {
	if ctx == 0 || class == 0 {
		return
	}
	rec := n.recordFor(class)
	if rec == nil {
		return
	}
	id := objects.Put(rec)
	global := C.JSContextGetGlobalObject(cCtx(ctx))
	if !bool(C.JSObjectSetPrivate(global, registry.Pointer(id))) {
		objects.Delete(id)
	}
}

func (n *native) GlobalContextRetain(ctx ContextRef) ContextRef {
	return goGlobal(C.JSGlobalContextRetain(cGlobal(ctx)))
}

func (n *native) GlobalContextRelease(ctx ContextRef) {
	C.JSGlobalContextRelease(cGlobal(ctx))
}

func (n *native) GlobalContextCopyName(ctx ContextRef) StringRef {
	return goString(C.JSGlobalContextCopyName(cGlobal(ctx)))
}

func (n *native) GlobalContextSetName(ctx ContextRef, name StringRef) {
	C.JSGlobalContextSetName(cGlobal(ctx), cString(name))
}

func (n *native) ContextGetGlobalObject(ctx ContextRef) ObjectRef {
	return goObject(C.JSContextGetGlobalObject(cCtx(ctx)))
}

func (n *native) ContextGetGroup(ctx ContextRef) ContextGroupRef {
	return goGroup(C.JSContextGetGroup(cCtx(ctx)))
}

func (n *native) ContextGetGlobalContext(ctx ContextRef) ContextRef {
	return goGlobal(C.JSContextGetGlobalContext(cCtx(ctx)))
}

// =====================
// Script evaluation
// =====================

func (n *native) EvaluateScript(ctx ContextRef, script StringRef, this ObjectRef, sourceURL StringRef, startingLine int) (ValueRef, ValueRef) {
	var exc C.JSValueRef
	v := C.JSEvaluateScript(cCtx(ctx), cString(script), cObject(this), cString(sourceURL), C.int(startingLine), &exc)
	return goValue(v), goValue(exc)
}

func (n *native) CheckScriptSyntax(ctx ContextRef, script StringRef, sourceURL StringRef, startingLine int) (bool, ValueRef) {
	var exc C.JSValueRef
	ok := C.JSCheckScriptSyntax(cCtx(ctx), cString(script), cString(sourceURL), C.int(startingLine), &exc)
	return bool(ok), goValue(exc)
}

func (n *native) GarbageCollect(ctx ContextRef) {
	C.JSGarbageCollect(cCtx(ctx))
}

// =====================
// Strings
// =====================

func (n *native) StringCreateWithCharacters(chars []uint16) StringRef {
	if len(chars) == 0 {
		return goString(C.JSStringCreateWithCharacters(nil, 0))
	}
	return goString(C.JSStringCreateWithCharacters((*C.JSChar)(unsafe.Pointer(&chars[0])), C.size_t(len(chars))))
}

func (n *native) StringCreateWithUTF8CString(s string) StringRef {
	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))
	return goString(C.JSStringCreateWithUTF8CString(cs))
}

func (n *native) StringRetain(s StringRef) StringRef {
	return goString(C.JSStringRetain(cString(s)))
}

func (n *native) StringRelease(s StringRef) {
	C.JSStringRelease(cString(s))
}

func (n *native) StringGetLength(s StringRef) int {
	return int(C.JSStringGetLength(cString(s)))
}

func (n *native) StringGetCharacters(s StringRef) []uint16 {
	length := int(C.JSStringGetLength(cString(s)))
	out := make([]uint16, length)
	if length == 0 {
		return out
	}
	src := unsafe.Slice((*uint16)(unsafe.Pointer(C.JSStringGetCharactersPtr(cString(s)))), length)
	copy(out, src)
	return out
}

func (n *native) StringGetUTF8CString(s StringRef) string {
	size := C.JSStringGetMaximumUTF8CStringSize(cString(s))
	buf := (*C.char)(C.malloc(size))
	defer C.free(unsafe.Pointer(buf))
	written := C.JSStringGetUTF8CString(cString(s), buf, size)
	if written == 0 {
		return ""
	}
	// written includes the terminating NUL.
	return C.GoStringN(buf, C.int(written-1))
}

func (n *native) StringIsEqual(a, b StringRef) bool {
	return bool(C.JSStringIsEqual(cString(a), cString(b)))
}

func (n *native) StringIsEqualToUTF8CString(a StringRef, b string) bool {
	cs := C.CString(b)
	defer C.free(unsafe.Pointer(cs))
	return bool(C.JSStringIsEqualToUTF8CString(cString(a), cs))
}

// =====================
// Values
// =====================

func (n *native) ValueGetType(ctx ContextRef, v ValueRef) Type {
	return Type(C.JSValueGetType(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsUndefined(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsUndefined(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsNull(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsNull(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsBoolean(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsBoolean(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsNumber(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsNumber(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsString(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsString(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsSymbol(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsSymbol(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsObject(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsObject(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsObjectOfClass(ctx ContextRef, v ValueRef, class ClassRef) bool {
	return bool(C.JSValueIsObjectOfClass(cCtx(ctx), cValue(v), cClass(class)))
}

func (n *native) ValueIsArray(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsArray(cCtx(ctx), cValue(v)))
}

func (n *native) ValueIsDate(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueIsDate(cCtx(ctx), cValue(v)))
}

func (n *native) ValueGetTypedArrayType(ctx ContextRef, v ValueRef) (TypedArrayType, ValueRef) {
	var exc C.JSValueRef
	t := C.JSValueGetTypedArrayType(cCtx(ctx), cValue(v), &exc)
	return TypedArrayType(t), goValue(exc)
}

func (n *native) ValueIsEqual(ctx ContextRef, a, b ValueRef) (bool, ValueRef) {
	var exc C.JSValueRef
	eq := C.JSValueIsEqual(cCtx(ctx), cValue(a), cValue(b), &exc)
	return bool(eq), goValue(exc)
}

func (n *native) ValueIsStrictEqual(ctx ContextRef, a, b ValueRef) bool {
	return bool(C.JSValueIsStrictEqual(cCtx(ctx), cValue(a), cValue(b)))
}

func (n *native) ValueIsInstanceOfConstructor(ctx ContextRef, v ValueRef, constructor ObjectRef) (bool, ValueRef) {
	var exc C.JSValueRef
	ok := C.JSValueIsInstanceOfConstructor(cCtx(ctx), cValue(v), cObject(constructor), &exc)
	return bool(ok), goValue(exc)
}

func (n *native) ValueMakeUndefined(ctx ContextRef) ValueRef {
	return goValue(C.JSValueMakeUndefined(cCtx(ctx)))
}

func (n *native) ValueMakeNull(ctx ContextRef) ValueRef {
	return goValue(C.JSValueMakeNull(cCtx(ctx)))
}

func (n *native) ValueMakeBoolean(ctx ContextRef, b bool) ValueRef {
	return goValue(C.JSValueMakeBoolean(cCtx(ctx), C.bool(b)))
}

func (n *native) ValueMakeNumber(ctx ContextRef, f float64) ValueRef {
	return goValue(C.JSValueMakeNumber(cCtx(ctx), C.double(f)))
}

func (n *native) ValueMakeString(ctx ContextRef, s StringRef) ValueRef {
	return goValue(C.JSValueMakeString(cCtx(ctx), cString(s)))
}

func (n *native) ValueMakeSymbol(ctx ContextRef, description StringRef) ValueRef {
	return goValue(C.JSValueMakeSymbol(cCtx(ctx), cString(description)))
}

func (n *native) ValueMakeFromJSONString(ctx ContextRef, s StringRef) ValueRef {
	return goValue(C.JSValueMakeFromJSONString(cCtx(ctx), cString(s)))
}

func (n *native) ValueCreateJSONString(ctx ContextRef, v ValueRef, indent int) (StringRef, ValueRef) {
	var exc C.JSValueRef
	s := C.JSValueCreateJSONString(cCtx(ctx), cValue(v), C.uint(indent), &exc)
	return goString(s), goValue(exc)
}

func (n *native) ValueToBoolean(ctx ContextRef, v ValueRef) bool {
	return bool(C.JSValueToBoolean(cCtx(ctx), cValue(v)))
}

func (n *native) ValueToNumber(ctx ContextRef, v ValueRef) (float64, ValueRef) {
	var exc C.JSValueRef
	f := C.JSValueToNumber(cCtx(ctx), cValue(v), &exc)
	return float64(f), goValue(exc)
}

func (n *native) ValueToStringCopy(ctx ContextRef, v ValueRef) (StringRef, ValueRef) {
	var exc C.JSValueRef
	s := C.JSValueToStringCopy(cCtx(ctx), cValue(v), &exc)
	return goString(s), goValue(exc)
}

func (n *native) ValueToObject(ctx ContextRef, v ValueRef) (ObjectRef, ValueRef) {
	var exc C.JSValueRef
	o := C.JSValueToObject(cCtx(ctx), cValue(v), &exc)
	return goObject(o), goValue(exc)
}

func (n *native) ValueProtect(ctx ContextRef, v ValueRef) {
	C.JSValueProtect(cCtx(ctx), cValue(v))
}

func (n *native) ValueUnprotect(ctx ContextRef, v ValueRef) {
	C.JSValueUnprotect(cCtx(ctx), cValue(v))
}

// =====================
// Objects
// =====================

func (n *native) ObjectMake(ctx ContextRef, class ClassRef) ObjectRef {
	if class == 0 {
		return goObject(C.JSObjectMake(cCtx(ctx), nil, nil))
	}
	rec := n.recordFor(class)
	if rec == nil {
		return goObject(C.JSObjectMake(cCtx(ctx), cClass(class), nil))
	}
	id := objects.Put(rec)
	o := C.JSObjectMake(cCtx(ctx), cClass(class), registry.Pointer(id))
	if o == nil {
		objects.Delete(id)
	}
	return goObject(o)
}

// ObjectMakeFunctionWithCallback builds a callable object from an internal
// class and gives it Function.prototype, so call/apply/bind work on it.
func (n *native) ObjectMakeFunctionWithCallback(ctx ContextRef, name StringRef, cb FunctionCallback) ObjectRef {
	class := n.functionClass()
	id := objects.Put(&objectRecord{call: cb})
	fn := C.JSObjectMake(cCtx(ctx), class, registry.Pointer(id))
	if fn == nil {
		objects.Delete(id)
		return 0
	}

	if proto := n.functionPrototype(ctx); proto != nil {
		C.JSObjectSetPrototype(cCtx(ctx), fn, proto)
	}
	if name != 0 {
		key := n.StringCreateWithUTF8CString("name")
		defer C.JSStringRelease(cString(key))
		attrs := C.JSPropertyAttributes(PropertyAttributeReadOnly | PropertyAttributeDontEnum)
		C.JSObjectSetProperty(cCtx(ctx), fn, cString(key), C.JSValueMakeString(cCtx(ctx), cString(name)), attrs, nil)
	}
	return goObject(fn)
}

func (n *native) functionClass() C.JSClassRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fnClass == nil {
		name := C.CString("Function")
		defer C.free(unsafe.Pointer(name))
		n.fnClass = C.jscgo_class_create(name, C.kJSClassAttributeNone, nil, 1, 0)
	}
	return n.fnClass
}

func (n *native) functionPrototype(ctx ContextRef) C.JSValueRef {
	key := n.StringCreateWithUTF8CString("Function")
	defer C.JSStringRelease(cString(key))
	protoKey := n.StringCreateWithUTF8CString("prototype")
	defer C.JSStringRelease(cString(protoKey))

	global := C.JSContextGetGlobalObject(cCtx(ctx))
	ctor := C.JSObjectGetProperty(cCtx(ctx), global, cString(key), nil)
	if ctor == nil || !bool(C.JSValueIsObject(cCtx(ctx), ctor)) {
		return nil
	}
	return C.JSObjectGetProperty(cCtx(ctx), C.JSObjectRef(unsafe.Pointer(ctor)), cString(protoKey), nil)
}

func (n *native) ObjectMakeArray(ctx ContextRef, elements []ValueRef) (ObjectRef, ValueRef) {
	var exc C.JSValueRef
	argv, argc := valueArray(elements)
	o := C.JSObjectMakeArray(cCtx(ctx), argc, argv, &exc)
	return goObject(o), goValue(exc)
}

func (n *native) ObjectMakeError(ctx ContextRef, args []ValueRef) (ObjectRef, ValueRef) {
	var exc C.JSValueRef
	argv, argc := valueArray(args)
	o := C.JSObjectMakeError(cCtx(ctx), argc, argv, &exc)
	return goObject(o), goValue(exc)
}

func (n *native) ObjectGetPrototype(ctx ContextRef, o ObjectRef) ValueRef {
	return goValue(C.JSObjectGetPrototype(cCtx(ctx), cObject(o)))
}

func (n *native) ObjectSetPrototype(ctx ContextRef, o ObjectRef, proto ValueRef) {
	C.JSObjectSetPrototype(cCtx(ctx), cObject(o), cValue(proto))
}

func (n *native) ObjectHasProperty(ctx ContextRef, o ObjectRef, name StringRef) bool {
	return bool(C.JSObjectHasProperty(cCtx(ctx), cObject(o), cString(name)))
}

func (n *native) ObjectGetProperty(ctx ContextRef, o ObjectRef, name StringRef) (ValueRef, ValueRef) {
	var exc C.JSValueRef
	v := C.JSObjectGetProperty(cCtx(ctx), cObject(o), cString(name), &exc)
	return goValue(v), goValue(exc)
}

func (n *native) ObjectSetProperty(ctx ContextRef, o ObjectRef, name StringRef, v ValueRef, attrs PropertyAttributes) ValueRef {
	var exc C.JSValueRef
	C.JSObjectSetProperty(cCtx(ctx), cObject(o), cString(name), cValue(v), C.JSPropertyAttributes(attrs), &exc)
	return goValue(exc)
}

func (n *native) ObjectDeleteProperty(ctx ContextRef, o ObjectRef, name StringRef) (bool, ValueRef) {
	var exc C.JSValueRef
	ok := C.JSObjectDeleteProperty(cCtx(ctx), cObject(o), cString(name), &exc)
	return bool(ok), goValue(exc)
}

func (n *native) ObjectGetPropertyAtIndex(ctx ContextRef, o ObjectRef, index uint32) (ValueRef, ValueRef) {
	var exc C.JSValueRef
	v := C.JSObjectGetPropertyAtIndex(cCtx(ctx), cObject(o), C.uint(index), &exc)
	return goValue(v), goValue(exc)
}

func (n *native) ObjectSetPropertyAtIndex(ctx ContextRef, o ObjectRef, index uint32, v ValueRef) ValueRef {
	var exc C.JSValueRef
	C.JSObjectSetPropertyAtIndex(cCtx(ctx), cObject(o), C.uint(index), cValue(v), &exc)
	return goValue(exc)
}

func (n *native) ObjectIsFunction(ctx ContextRef, o ObjectRef) bool {
	return bool(C.JSObjectIsFunction(cCtx(ctx), cObject(o)))
}

func (n *native) ObjectCallAsFunction(ctx ContextRef, o ObjectRef, this ObjectRef, args []ValueRef) (ValueRef, ValueRef) {
	var exc C.JSValueRef
	argv, argc := valueArray(args)
	v := C.JSObjectCallAsFunction(cCtx(ctx), cObject(o), cObject(this), argc, argv, &exc)
	return goValue(v), goValue(exc)
}

func (n *native) ObjectIsConstructor(ctx ContextRef, o ObjectRef) bool {
	return bool(C.JSObjectIsConstructor(cCtx(ctx), cObject(o)))
}

func (n *native) ObjectCallAsConstructor(ctx ContextRef, o ObjectRef, args []ValueRef) (ObjectRef, ValueRef) {
	var exc C.JSValueRef
	argv, argc := valueArray(args)
	v := C.JSObjectCallAsConstructor(cCtx(ctx), cObject(o), argc, argv, &exc)
	return goObject(v), goValue(exc)
}

func (n *native) ObjectCopyPropertyNames(ctx ContextRef, o ObjectRef) PropertyNameArrayRef {
	return goNames(C.JSObjectCopyPropertyNames(cCtx(ctx), cObject(o)))
}

func (n *native) PropertyNameArrayRetain(a PropertyNameArrayRef) PropertyNameArrayRef {
	return goNames(C.JSPropertyNameArrayRetain(cNames(a)))
}

func (n *native) PropertyNameArrayRelease(a PropertyNameArrayRef) {
	C.JSPropertyNameArrayRelease(cNames(a))
}

func (n *native) PropertyNameArrayGetCount(a PropertyNameArrayRef) int {
	return int(C.JSPropertyNameArrayGetCount(cNames(a)))
}

func (n *native) PropertyNameArrayGetNameAtIndex(a PropertyNameArrayRef, index int) StringRef {
	return goString(C.JSPropertyNameArrayGetNameAtIndex(cNames(a), C.size_t(index)))
}

// =====================
// Classes
// =====================

func (n *native) ClassCreate(def *ClassDefinition) ClassRef {
	if def == nil {
		return 0
	}
	name := C.CString(def.ClassName)
	defer C.free(unsafe.Pointer(name))

	n.mu.Lock()
	defer n.mu.Unlock()
	entry := &classEntry{def: *def, parent: n.classes[def.ParentClass], refs: 1}
	rec := entry.record()

	var hasCall, hasConstruct C.int
	if rec.call != nil {
		hasCall = 1
	}
	if rec.construct != nil {
		hasConstruct = 1
	}
	class := goClass(C.jscgo_class_create(name, C.JSClassAttributes(def.Attributes), cClass(def.ParentClass), hasCall, hasConstruct))
	if class == 0 {
		return 0
	}
	n.classes[class] = entry
	return class
}

func (n *native) ClassRetain(c ClassRef) ClassRef {
	n.mu.Lock()
	if e, ok := n.classes[c]; ok {
		e.refs++
	}
	n.mu.Unlock()
	return goClass(C.JSClassRetain(cClass(c)))
}

// ClassRelease drops the Go entry with the last reference. Objects already
// made from the class keep their own records.
func (n *native) ClassRelease(c ClassRef) {
	n.mu.Lock()
	if e, ok := n.classes[c]; ok {
		e.refs--
		if e.refs <= 0 {
			delete(n.classes, c)
		}
	}
	n.mu.Unlock()
	C.JSClassRelease(cClass(c))
}

func (n *native) recordFor(class ClassRef) *objectRecord {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.classes[class]
	if !ok {
		return nil
	}
	return e.record()
}

// record resolves the callbacks along the parent chain. The nearest class
// that sets a call or construct callback wins.
func (e *classEntry) record() *objectRecord {
	rec := &objectRecord{}
	for c := e; c != nil; c = c.parent {
		if rec.call == nil {
			rec.call = c.def.CallAsFunction
		}
		if rec.construct == nil {
			rec.construct = c.def.CallAsConstructor
		}
		if c.def.Finalize != nil {
			rec.finalizers = append(rec.finalizers, c.def.Finalize)
		}
	}
	return rec
}

// =====================
// Typed arrays
// =====================

func (n *native) ObjectMakeTypedArray(ctx ContextRef, kind TypedArrayType, length int) (ObjectRef, ValueRef) {
	var exc C.JSValueRef
	o := C.JSObjectMakeTypedArray(cCtx(ctx), C.JSTypedArrayType(kind), C.size_t(length), &exc)
	return goObject(o), goValue(exc)
}

// ObjectGetTypedArrayBytes slices the backing store to the array's window.
// JSObjectGetTypedArrayBytesPtr points at the start of the buffer, not at
// the array's byte offset.
func (n *native) ObjectGetTypedArrayBytes(ctx ContextRef, o ObjectRef) ([]byte, ValueRef) {
	offset, exc := n.ObjectGetTypedArrayByteOffset(ctx, o)
	if exc != 0 {
		return nil, exc
	}
	length, exc := n.ObjectGetTypedArrayByteLength(ctx, o)
	if exc != 0 {
		return nil, exc
	}

	var cexc C.JSValueRef
	p := C.JSObjectGetTypedArrayBytesPtr(cCtx(ctx), cObject(o), &cexc)
	if cexc != nil {
		return nil, goValue(cexc)
	}
	if p == nil || length == 0 {
		return []byte{}, 0
	}
	base := unsafe.Slice((*byte)(p), offset+length)
	return base[offset : offset+length : offset+length], 0
}

func (n *native) ObjectGetTypedArrayLength(ctx ContextRef, o ObjectRef) (int, ValueRef) {
	var exc C.JSValueRef
	l := C.JSObjectGetTypedArrayLength(cCtx(ctx), cObject(o), &exc)
	return int(l), goValue(exc)
}

func (n *native) ObjectGetTypedArrayByteLength(ctx ContextRef, o ObjectRef) (int, ValueRef) {
	var exc C.JSValueRef
	l := C.JSObjectGetTypedArrayByteLength(cCtx(ctx), cObject(o), &exc)
	return int(l), goValue(exc)
}

func (n *native) ObjectGetTypedArrayByteOffset(ctx ContextRef, o ObjectRef) (int, ValueRef) {
	var exc C.JSValueRef
	l := C.JSObjectGetTypedArrayByteOffset(cCtx(ctx), cObject(o), &exc)
	return int(l), goValue(exc)
}

// =====================
// Callback support
// =====================

// panicException turns a recovered panic into a JS Error value. A panic must
// never unwind through engine frames.
func panicException(ctx C.JSContextRef, r any) C.JSValueRef {
	return errorValue(ctx, fmt.Sprintf("go callback panicked: %v", r))
}

func errorValue(ctx C.JSContextRef, msg string) C.JSValueRef {
	cs := C.CString(msg)
	defer C.free(unsafe.Pointer(cs))
	s := C.JSStringCreateWithUTF8CString(cs)
	defer C.JSStringRelease(s)

	arg := C.JSValueMakeString(ctx, s)
	return C.JSValueRef(C.JSObjectMakeError(ctx, 1, &arg, nil))
}

func lookupRecord(o C.JSObjectRef) (*objectRecord, bool) {
	p := C.JSObjectGetPrivate(o)
	if p == nil {
		return nil, false
	}
	return objects.Get(registry.ID(p))
}

var _ API = (*native)(nil)
