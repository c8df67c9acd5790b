package mockvm

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/dop251/goja"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

var _ jscsys.API = (*VM)(nil)

// =====================
// Context groups and contexts
// =====================

func (vm *VM) ContextGroupCreate() jscsys.ContextGroupRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	g := &group{ref: jscsys.ContextGroupRef(vm.alloc()), refs: 1}
	vm.groups[g.ref] = g
	vm.counts[KindGroup].Created++
	return g.ref
}

func (vm *VM) ContextGroupRetain(ref jscsys.ContextGroupRef) jscsys.ContextGroupRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	g, ok := vm.groups[ref]
	if !ok {
		vm.violate("retain of dead group %#x", uintptr(ref))
		return ref
	}
	g.refs++
	vm.counts[KindGroup].Retained++
	return ref
}

func (vm *VM) ContextGroupRelease(ref jscsys.ContextGroupRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.counts[KindGroup].Released++
	vm.releaseGroupLocked(ref)
}

func (vm *VM) releaseGroupLocked(ref jscsys.ContextGroupRef) {
	g, ok := vm.groups[ref]
	if !ok {
		vm.violate("release of dead group %#x", uintptr(ref))
		return
	}
	g.refs--
	if g.refs <= 0 {
		delete(vm.groups, ref)
	}
}

func (vm *VM) GlobalContextCreate(class jscsys.ClassRef) jscsys.ContextRef {
	vm.mu.Lock()
	// The implicit group is held only by the context, so it is not counted.
	g := &group{ref: jscsys.ContextGroupRef(vm.alloc())}
	vm.groups[g.ref] = g
	vm.mu.Unlock()
	return vm.newContext(g, class)
}

func (vm *VM) GlobalContextCreateInGroup(ref jscsys.ContextGroupRef, class jscsys.ClassRef) jscsys.ContextRef {
	vm.mu.Lock()
	g, ok := vm.groups[ref]
	if !ok {
		vm.violate("context created in dead group %#x", uintptr(ref))
		vm.mu.Unlock()
		return 0
	}
	vm.mu.Unlock()
	return vm.newContext(g, class)
}

func (vm *VM) newContext(g *group, class jscsys.ClassRef) jscsys.ContextRef {
	rt := goja.New()
	h, err := loadHelpers(rt)
	if err != nil {
		// The helper source is a constant; failing to load it is a bug.
		panic(err)
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	c := &vmContext{
		ref:       jscsys.ContextRef(vm.alloc()),
		group:     g,
		rt:        rt,
		h:         h,
		refs:      1,
		instances: make(map[*goja.Object]*classEntry),
	}
	if class != 0 {
		ce, ok := vm.classes[class]
		if !ok {
			vm.violate("context created with dead class %#x", uintptr(class))
		} else {
			c.instances[rt.GlobalObject()] = ce
		}
	}
	g.refs++
	vm.contexts[c.ref] = c
	vm.counts[KindContext].Created++
	return c.ref
}

func (vm *VM) GlobalContextRetain(ref jscsys.ContextRef) jscsys.ContextRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	c := vm.contextLocked(ref)
	if c == nil {
		return ref
	}
	c.refs++
	vm.counts[KindContext].Retained++
	return ref
}

// GlobalContextRelease drops a reference. The last one runs class finalizers
// and invalidates every value handle created in the context.
func (vm *VM) GlobalContextRelease(ref jscsys.ContextRef) {
	vm.mu.Lock()
	vm.counts[KindContext].Released++
	c, ok := vm.contexts[ref]
	if !ok {
		vm.violate("release of dead context %#x", uintptr(ref))
		vm.mu.Unlock()
		return
	}
	c.refs--
	if c.refs > 0 {
		vm.mu.Unlock()
		return
	}

	delete(vm.contexts, ref)
	for vref, e := range vm.values {
		if e.ctx == c {
			delete(vm.values, vref)
		}
	}
	var finalizers []jscsys.FinalizeCallback
	var handles []jscsys.ObjectRef
	for _, ce := range c.instances {
		h := jscsys.ObjectRef(vm.alloc())
		for e := ce; e != nil; e = e.parent {
			if e.def.Finalize != nil {
				finalizers = append(finalizers, e.def.Finalize)
				handles = append(handles, h)
			}
		}
	}
	c.instances = nil
	vm.releaseGroupLocked(c.group.ref)
	vm.mu.Unlock()

	for i, fin := range finalizers {
		fin(handles[i])
	}
}

func (vm *VM) GlobalContextCopyName(ref jscsys.ContextRef) jscsys.StringRef {
	c := vm.context(ref)
	if c == nil || !c.named {
		return 0
	}
	return vm.newString(append([]uint16(nil), c.name...))
}

func (vm *VM) GlobalContextSetName(ref jscsys.ContextRef, name jscsys.StringRef) {
	c := vm.context(ref)
	if c == nil {
		return
	}
	if name == 0 {
		c.name, c.named = nil, false
		return
	}
	units, ok := vm.stringUnits(name)
	if !ok {
		return
	}
	c.name, c.named = append([]uint16(nil), units...), true
}

func (vm *VM) ContextGetGlobalObject(ref jscsys.ContextRef) jscsys.ObjectRef {
	c := vm.context(ref)
	if c == nil {
		return 0
	}
	return jscsys.ObjectRef(vm.wrap(c, c.rt.GlobalObject()))
}

func (vm *VM) ContextGetGroup(ref jscsys.ContextRef) jscsys.ContextGroupRef {
	c := vm.context(ref)
	if c == nil {
		return 0
	}
	return c.group.ref
}

// ContextGetGlobalContext is the identity: every mock context is global.
func (vm *VM) ContextGetGlobalContext(ref jscsys.ContextRef) jscsys.ContextRef {
	if vm.context(ref) == nil {
		return 0
	}
	return ref
}

// =====================
// Script evaluation
// =====================

func (vm *VM) scriptSource(script, sourceURL jscsys.StringRef, startingLine int) (src, url string, ok bool) {
	units, ok := vm.stringUnits(script)
	if !ok {
		return "", "", false
	}
	src = string(utf16.Decode(units))
	if startingLine > 1 {
		src = strings.Repeat("\n", startingLine-1) + src
	}
	if sourceURL != 0 {
		u, ok := vm.stringUnits(sourceURL)
		if !ok {
			return "", "", false
		}
		url = string(utf16.Decode(u))
	}
	return src, url, true
}

func (vm *VM) EvaluateScript(ctx jscsys.ContextRef, script jscsys.StringRef, this jscsys.ObjectRef, sourceURL jscsys.StringRef, startingLine int) (jscsys.ValueRef, jscsys.ValueRef) {
	c := vm.context(ctx)
	if c == nil {
		return 0, 0
	}
	src, url, ok := vm.scriptSource(script, sourceURL, startingLine)
	if !ok {
		return 0, 0
	}

	if this != 0 {
		thisVal, ok := vm.resolveValues(c, []jscsys.ValueRef{this.Value()})
		if !ok {
			return 0, 0
		}
		res, exc := c.call("evalWith", thisVal[0], c.rt.ToValue(src))
		return vm.wrapPair(c, res, exc)
	}

	res, err := c.rt.RunScript(url, src)
	if err != nil {
		return 0, vm.wrap(c, c.thrown(err))
	}
	return vm.wrap(c, res), 0
}

func (vm *VM) CheckScriptSyntax(ctx jscsys.ContextRef, script jscsys.StringRef, sourceURL jscsys.StringRef, startingLine int) (bool, jscsys.ValueRef) {
	c := vm.context(ctx)
	if c == nil {
		return false, 0
	}
	src, url, ok := vm.scriptSource(script, sourceURL, startingLine)
	if !ok {
		return false, 0
	}
	if _, err := goja.Compile(url, src, false); err != nil {
		return false, vm.wrap(c, c.thrown(err))
	}
	return true, 0
}

// GarbageCollect sweeps every value handle of the group that is neither
// protected nor pinned by a running callback.
func (vm *VM) GarbageCollect(ctx jscsys.ContextRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	c := vm.contextLocked(ctx)
	if c == nil {
		return
	}
	for ref, e := range vm.values {
		if e.ctx.group == c.group && e.protects == 0 && e.pinned == 0 {
			delete(vm.values, ref)
		}
	}
}

// =====================
// Strings
// =====================

func (vm *VM) StringCreateWithCharacters(chars []uint16) jscsys.StringRef {
	return vm.newString(append([]uint16{}, chars...))
}

// StringCreateWithUTF8CString stops at the first NUL, like the C function.
func (vm *VM) StringCreateWithUTF8CString(s string) jscsys.StringRef {
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return vm.newString(utf16.Encode([]rune(s)))
}

func (vm *VM) StringRetain(ref jscsys.StringRef) jscsys.StringRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	s, ok := vm.strings[ref]
	if !ok {
		vm.violate("retain of dead string %#x", uintptr(ref))
		return ref
	}
	s.refs++
	vm.counts[KindString].Retained++
	return ref
}

func (vm *VM) StringRelease(ref jscsys.StringRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.counts[KindString].Released++
	s, ok := vm.strings[ref]
	if !ok {
		vm.violate("release of dead string %#x", uintptr(ref))
		return
	}
	if s.owner != 0 && s.refs <= 1 {
		vm.violate("release of string %#x owned by name array %#x", uintptr(ref), uintptr(s.owner))
		return
	}
	s.refs--
	if s.refs <= 0 {
		delete(vm.strings, ref)
	}
}

func (vm *VM) StringGetLength(ref jscsys.StringRef) int {
	units, _ := vm.stringUnits(ref)
	return len(units)
}

func (vm *VM) StringGetCharacters(ref jscsys.StringRef) []uint16 {
	units, _ := vm.stringUnits(ref)
	return append([]uint16{}, units...)
}

func (vm *VM) StringGetUTF8CString(ref jscsys.StringRef) string {
	units, _ := vm.stringUnits(ref)
	return string(utf16.Decode(units))
}

func (vm *VM) StringIsEqual(a, b jscsys.StringRef) bool {
	ua, okA := vm.stringUnits(a)
	ub, okB := vm.stringUnits(b)
	return okA && okB && equalUnits(ua, ub)
}

func (vm *VM) StringIsEqualToUTF8CString(a jscsys.StringRef, b string) bool {
	ua, ok := vm.stringUnits(a)
	if i := strings.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return ok && equalUnits(ua, utf16.Encode([]rune(b)))
}

func equalUnits(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// =====================
// Values
// =====================

func (vm *VM) ValueGetType(ctx jscsys.ContextRef, v jscsys.ValueRef) jscsys.Type {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return jscsys.TypeUndefined
	}
	t, exc := c.call("typeOf", nil, vals[0])
	if exc != nil {
		return jscsys.TypeUndefined
	}
	switch t.String() {
	case "null":
		return jscsys.TypeNull
	case "boolean":
		return jscsys.TypeBoolean
	case "number":
		return jscsys.TypeNumber
	case "string":
		return jscsys.TypeString
	case "symbol":
		return jscsys.TypeSymbol
	case "bigint":
		return jscsys.TypeBigInt
	case "object", "function":
		return jscsys.TypeObject
	default:
		return jscsys.TypeUndefined
	}
}

func (vm *VM) isType(ctx jscsys.ContextRef, v jscsys.ValueRef, t jscsys.Type) bool {
	return vm.ValueGetType(ctx, v) == t
}

func (vm *VM) ValueIsUndefined(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeUndefined)
}

func (vm *VM) ValueIsNull(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeNull)
}

func (vm *VM) ValueIsBoolean(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeBoolean)
}

func (vm *VM) ValueIsNumber(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeNumber)
}

func (vm *VM) ValueIsString(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeString)
}

func (vm *VM) ValueIsSymbol(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeSymbol)
}

func (vm *VM) ValueIsObject(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	return vm.isType(ctx, v, jscsys.TypeObject)
}

func (vm *VM) ValueIsObjectOfClass(ctx jscsys.ContextRef, v jscsys.ValueRef, class jscsys.ClassRef) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	c := vm.contextLocked(ctx)
	if c == nil {
		return false
	}
	val, ok := vm.valueLocked(c, v)
	if !ok {
		return false
	}
	want, ok := vm.classes[class]
	if !ok {
		vm.violate("use of dead class %#x", uintptr(class))
		return false
	}
	obj, isObj := val.(*goja.Object)
	if !isObj {
		return false
	}
	ce, ok := vm.values[v].ctx.instances[obj]
	return ok && ce.inherits(want)
}

func (vm *VM) ValueIsArray(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	c, vals, ok := vm.resolve(ctx, v)
	return ok && c.truthy("isArray", vals[0])
}

func (vm *VM) ValueIsDate(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return false
	}
	tag, exc := c.call("tag", nil, vals[0])
	return exc == nil && tag.String() == "Date"
}

func (vm *VM) ValueGetTypedArrayType(ctx jscsys.ContextRef, v jscsys.ValueRef) (jscsys.TypedArrayType, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return jscsys.TypedArrayNone, 0
	}
	return c.typedArrayKind(vals[0]), 0
}

func (c *vmContext) typedArrayKind(v goja.Value) jscsys.TypedArrayType {
	if _, isObj := v.(*goja.Object); !isObj {
		return jscsys.TypedArrayNone
	}
	tag, exc := c.call("tag", nil, v)
	if exc != nil {
		return jscsys.TypedArrayNone
	}
	kind, ok := jscsys.TypedArrayTypeByName(tag.String())
	if !ok {
		return jscsys.TypedArrayNone
	}
	return kind
}

func (vm *VM) ValueIsEqual(ctx jscsys.ContextRef, a, b jscsys.ValueRef) (bool, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, a, b)
	if !ok {
		return false, 0
	}
	res, exc := c.call("looseEqual", nil, vals[0], vals[1])
	if exc != nil {
		return false, vm.wrap(c, exc)
	}
	return res.ToBoolean(), 0
}

func (vm *VM) ValueIsStrictEqual(ctx jscsys.ContextRef, a, b jscsys.ValueRef) bool {
	c, vals, ok := vm.resolve(ctx, a, b)
	return ok && c.truthy("strictEqual", vals[0], vals[1])
}

func (vm *VM) ValueIsInstanceOfConstructor(ctx jscsys.ContextRef, v jscsys.ValueRef, constructor jscsys.ObjectRef) (bool, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v, constructor.Value())
	if !ok {
		return false, 0
	}
	res, exc := c.call("instanceOf", nil, vals[0], vals[1])
	if exc != nil {
		return false, vm.wrap(c, exc)
	}
	return res.ToBoolean(), 0
}

func (vm *VM) ValueMakeUndefined(ctx jscsys.ContextRef) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	return vm.wrap(c, goja.Undefined())
}

func (vm *VM) ValueMakeNull(ctx jscsys.ContextRef) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	return vm.wrap(c, goja.Null())
}

func (vm *VM) ValueMakeBoolean(ctx jscsys.ContextRef, b bool) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	return vm.wrap(c, c.rt.ToValue(b))
}

func (vm *VM) ValueMakeNumber(ctx jscsys.ContextRef, n float64) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	return vm.wrap(c, c.rt.ToValue(n))
}

func (vm *VM) ValueMakeString(ctx jscsys.ContextRef, s jscsys.StringRef) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	units, ok := vm.stringUnits(s)
	if !ok {
		return 0
	}
	return vm.wrap(c, c.jsString(units))
}

func (vm *VM) ValueMakeSymbol(ctx jscsys.ContextRef, description jscsys.StringRef) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	desc := goja.Undefined()
	if description != 0 {
		units, ok := vm.stringUnits(description)
		if !ok {
			return 0
		}
		desc = c.jsString(units)
	}
	sym, exc := c.call("makeSymbol", nil, desc)
	if exc != nil {
		return 0
	}
	return vm.wrap(c, sym)
}

func (vm *VM) ValueMakeFromJSONString(ctx jscsys.ContextRef, s jscsys.StringRef) jscsys.ValueRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	units, ok := vm.stringUnits(s)
	if !ok {
		return 0
	}
	v, exc := c.call("parse", nil, c.jsString(units))
	if exc != nil {
		return 0
	}
	return vm.wrap(c, v)
}

func (vm *VM) ValueCreateJSONString(ctx jscsys.ContextRef, v jscsys.ValueRef, indent int) (jscsys.StringRef, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return 0, 0
	}
	res, exc := c.call("stringify", nil, vals[0], c.rt.ToValue(indent))
	if exc != nil {
		return 0, vm.wrap(c, exc)
	}
	if goja.IsUndefined(res) {
		return 0, 0
	}
	return vm.newString(c.units(res)), 0
}

func (vm *VM) ValueToBoolean(ctx jscsys.ContextRef, v jscsys.ValueRef) bool {
	_, vals, ok := vm.resolve(ctx, v)
	return ok && vals[0].ToBoolean()
}

func (vm *VM) ValueToNumber(ctx jscsys.ContextRef, v jscsys.ValueRef) (float64, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return 0, 0
	}
	n, exc := c.call("toNumber", nil, vals[0])
	if exc != nil {
		return 0, vm.wrap(c, exc)
	}
	return n.ToFloat(), 0
}

func (vm *VM) ValueToStringCopy(ctx jscsys.ContextRef, v jscsys.ValueRef) (jscsys.StringRef, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return 0, 0
	}
	s, exc := c.call("toString", nil, vals[0])
	if exc != nil {
		return 0, vm.wrap(c, exc)
	}
	return vm.newString(c.units(s)), 0
}

func (vm *VM) ValueToObject(ctx jscsys.ContextRef, v jscsys.ValueRef) (jscsys.ObjectRef, jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, v)
	if !ok {
		return 0, 0
	}
	o, exc := c.call("toObject", nil, vals[0])
	ref, excRef := vm.wrapPair(c, o, exc)
	return jscsys.ObjectRef(ref), excRef
}

func (vm *VM) ValueProtect(ctx jscsys.ContextRef, v jscsys.ValueRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.contextLocked(ctx) == nil {
		return
	}
	e, ok := vm.values[v]
	if !ok {
		vm.violate("protect of dead value %#x", uintptr(v))
		return
	}
	e.protects++
	vm.counts[KindProtection].Retained++
}

func (vm *VM) ValueUnprotect(ctx jscsys.ContextRef, v jscsys.ValueRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.counts[KindProtection].Released++
	if vm.contextLocked(ctx) == nil {
		return
	}
	e, ok := vm.values[v]
	if !ok {
		vm.violate("unprotect of dead value %#x", uintptr(v))
		return
	}
	if e.protects == 0 {
		vm.violate("unprotect of unprotected value %#x", uintptr(v))
		return
	}
	e.protects--
}

// =====================
// Objects
// =====================

func (vm *VM) ObjectMake(ctx jscsys.ContextRef, class jscsys.ClassRef) jscsys.ObjectRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	if class == 0 {
		return jscsys.ObjectRef(vm.wrap(c, c.rt.NewObject()))
	}

	vm.mu.Lock()
	ce, ok := vm.classes[class]
	if !ok {
		vm.violate("instantiation of dead class %#x", uintptr(class))
	}
	vm.mu.Unlock()
	if !ok {
		return 0
	}

	obj := vm.instantiate(c, ce)
	if obj == nil {
		return 0
	}
	return jscsys.ObjectRef(vm.wrap(c, obj))
}

// instantiate creates an object of class ce. Callable classes are backed by
// a JS function so `obj()` and `new obj()` reach the Go callbacks.
func (vm *VM) instantiate(c *vmContext, ce *classEntry) *goja.Object {
	call, construct := ce.callAsFunction(), ce.callAsConstructor()

	var obj *goja.Object
	if call == nil && construct == nil {
		obj = c.rt.NewObject()
	} else {
		var self *goja.Object
		callFn, ctorFn := goja.Value(goja.Null()), goja.Value(goja.Null())
		if call != nil {
			callFn = c.rt.ToValue(func(fc goja.FunctionCall) goja.Value {
				return vm.dispatchCall(c, call, self, fc.This, fc.Arguments)
			})
		}
		if construct != nil {
			ctorFn = c.rt.ToValue(func(fc goja.FunctionCall) goja.Value {
				return vm.dispatchConstruct(c, construct, self, fc.Arguments)
			})
		}
		v, exc := c.call("callable", nil, callFn, ctorFn)
		if exc != nil {
			return nil
		}
		obj = v.ToObject(c.rt)
		self = obj
	}

	vm.mu.Lock()
	if c.instances != nil {
		c.instances[obj] = ce
	}
	vm.mu.Unlock()
	return obj
}

func (vm *VM) ObjectMakeFunctionWithCallback(ctx jscsys.ContextRef, name jscsys.StringRef, cb jscsys.FunctionCallback) jscsys.ObjectRef {
	c := vm.context(ctx)
	if c == nil {
		return 0
	}
	var self *goja.Object
	fn := c.rt.ToValue(func(fc goja.FunctionCall) goja.Value {
		return vm.dispatchCall(c, cb, self, fc.This, fc.Arguments)
	}).ToObject(c.rt)
	self = fn

	if name != 0 {
		units, ok := vm.stringUnits(name)
		if ok {
			c.call("defineName", nil, fn, c.jsString(units))
		}
	}
	return jscsys.ObjectRef(vm.wrap(c, fn))
}

// dispatchCall runs a Go function callback from inside goja. A returned
// exception is thrown by panicking with it, which goja turns into a throw.
func (vm *VM) dispatchCall(c *vmContext, cb jscsys.FunctionCallback, self *goja.Object, this goja.Value, args []goja.Value) goja.Value {
	if this != nil && (goja.IsUndefined(this) || goja.IsNull(this)) {
		this = nil
	}
	refs := vm.pin(c, append([]goja.Value{self, this}, args...)...)
	defer vm.unpin(refs)

	result, thrown := vm.runCallback(c, func() (jscsys.ValueRef, jscsys.ValueRef) {
		return cb(c.ref, jscsys.ObjectRef(refs[0]), jscsys.ObjectRef(refs[1]), refs[2:])
	})
	if thrown != nil {
		panic(thrown)
	}
	return result
}

func (vm *VM) dispatchConstruct(c *vmContext, cb jscsys.ConstructorCallback, self *goja.Object, args []goja.Value) goja.Value {
	refs := vm.pin(c, append([]goja.Value{self}, args...)...)
	defer vm.unpin(refs)

	result, thrown := vm.runCallback(c, func() (jscsys.ValueRef, jscsys.ValueRef) {
		obj, exc := cb(c.ref, jscsys.ObjectRef(refs[0]), refs[1:])
		return obj.Value(), exc
	})
	if thrown != nil {
		panic(thrown)
	}
	if _, isObj := result.(*goja.Object); !isObj {
		panic(c.rt.NewTypeError("constructor returned no object"))
	}
	return result
}

// runCallback invokes fn and resolves its result and exception handles.
// A Go panic becomes a thrown Error.
func (vm *VM) runCallback(c *vmContext, fn func() (jscsys.ValueRef, jscsys.ValueRef)) (result, thrown goja.Value) {
	var res, exc jscsys.ValueRef
	panicked := func() (p any) {
		defer func() { p = recover() }()
		res, exc = fn()
		return nil
	}()
	if panicked != nil {
		e, _ := c.call("error", nil, c.rt.ToValue(fmt.Sprintf("go callback panicked: %v", panicked)))
		return nil, e
	}
	if exc != 0 {
		return nil, vm.lookupValue(c, exc)
	}
	if res == 0 {
		return goja.Undefined(), nil
	}
	return vm.lookupValue(c, res), nil
}

func (vm *VM) ObjectMakeArray(ctx jscsys.ContextRef, elements []jscsys.ValueRef) (jscsys.ObjectRef, jscsys.ValueRef) {
	c := vm.context(ctx)
	if c == nil {
		return 0, 0
	}
	vals, ok := vm.resolveValues(c, elements)
	if !ok {
		return 0, 0
	}
	arr, exc := c.call("makeArray", nil, vals...)
	ref, excRef := vm.wrapPair(c, arr, exc)
	return jscsys.ObjectRef(ref), excRef
}

func (vm *VM) ObjectMakeError(ctx jscsys.ContextRef, args []jscsys.ValueRef) (jscsys.ObjectRef, jscsys.ValueRef) {
	c := vm.context(ctx)
	if c == nil {
		return 0, 0
	}
	vals, ok := vm.resolveValues(c, args)
	if !ok {
		return 0, 0
	}
	e, exc := c.call("makeError", nil, vals...)
	ref, excRef := vm.wrapPair(c, e, exc)
	return jscsys.ObjectRef(ref), excRef
}

func (vm *VM) ObjectGetPrototype(ctx jscsys.ContextRef, o jscsys.ObjectRef) jscsys.ValueRef {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0
	}
	p, exc := c.call("getPrototype", nil, obj)
	if exc != nil {
		return vm.wrap(c, goja.Null())
	}
	return vm.wrap(c, p)
}

func (vm *VM) ObjectSetPrototype(ctx jscsys.ContextRef, o jscsys.ObjectRef, proto jscsys.ValueRef) {
	c, vals, ok := vm.resolve(ctx, o.Value(), proto)
	if !ok {
		return
	}
	c.call("setPrototype", nil, vals[0], vals[1])
}

// key resolves a property name handle into a JS string.
func (vm *VM) key(c *vmContext, name jscsys.StringRef) (goja.Value, bool) {
	units, ok := vm.stringUnits(name)
	if !ok {
		return nil, false
	}
	return c.jsString(units), true
}

func (vm *VM) ObjectHasProperty(ctx jscsys.ContextRef, o jscsys.ObjectRef, name jscsys.StringRef) bool {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return false
	}
	k, ok := vm.key(c, name)
	return ok && c.truthy("has", obj, k)
}

func (vm *VM) ObjectGetProperty(ctx jscsys.ContextRef, o jscsys.ObjectRef, name jscsys.StringRef) (jscsys.ValueRef, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	k, ok := vm.key(c, name)
	if !ok {
		return 0, 0
	}
	res, exc := c.call("get", nil, obj, k)
	return vm.wrapPair(c, res, exc)
}

func (vm *VM) ObjectSetProperty(ctx jscsys.ContextRef, o jscsys.ObjectRef, name jscsys.StringRef, v jscsys.ValueRef, attrs jscsys.PropertyAttributes) jscsys.ValueRef {
	c, vals, ok := vm.resolve(ctx, o.Value(), v)
	if !ok {
		return 0
	}
	k, ok := vm.key(c, name)
	if !ok {
		return 0
	}

	var exc goja.Value
	if attrs == jscsys.PropertyAttributeNone {
		_, exc = c.call("set", nil, vals[0], k, vals[1])
	} else {
		_, exc = c.call("define", nil, vals[0], k, vals[1],
			c.rt.ToValue(attrs&jscsys.PropertyAttributeReadOnly != 0),
			c.rt.ToValue(attrs&jscsys.PropertyAttributeDontEnum != 0),
			c.rt.ToValue(attrs&jscsys.PropertyAttributeDontDelete != 0))
	}
	if exc != nil {
		return vm.wrap(c, exc)
	}
	return 0
}

func (vm *VM) ObjectDeleteProperty(ctx jscsys.ContextRef, o jscsys.ObjectRef, name jscsys.StringRef) (bool, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return false, 0
	}
	k, ok := vm.key(c, name)
	if !ok {
		return false, 0
	}
	res, exc := c.call("del", nil, obj, k)
	if exc != nil {
		return false, vm.wrap(c, exc)
	}
	return res.ToBoolean(), 0
}

func (vm *VM) ObjectGetPropertyAtIndex(ctx jscsys.ContextRef, o jscsys.ObjectRef, index uint32) (jscsys.ValueRef, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	res, exc := c.call("get", nil, obj, c.rt.ToValue(index))
	return vm.wrapPair(c, res, exc)
}

func (vm *VM) ObjectSetPropertyAtIndex(ctx jscsys.ContextRef, o jscsys.ObjectRef, index uint32, v jscsys.ValueRef) jscsys.ValueRef {
	c, vals, ok := vm.resolve(ctx, o.Value(), v)
	if !ok {
		return 0
	}
	if _, exc := c.call("set", nil, vals[0], c.rt.ToValue(index), vals[1]); exc != nil {
		return vm.wrap(c, exc)
	}
	return 0
}

func (vm *VM) instanceClass(c *vmContext, obj *goja.Object) (*classEntry, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	ce, ok := c.instances[obj]
	return ce, ok
}

func (vm *VM) ObjectIsFunction(ctx jscsys.ContextRef, o jscsys.ObjectRef) bool {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return false
	}
	if ce, ok := vm.instanceClass(c, obj); ok {
		return ce.callAsFunction() != nil
	}
	_, callable := goja.AssertFunction(obj)
	return callable
}

func (vm *VM) ObjectCallAsFunction(ctx jscsys.ContextRef, o jscsys.ObjectRef, this jscsys.ObjectRef, args []jscsys.ValueRef) (jscsys.ValueRef, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	vals, ok := vm.resolveValues(c, args)
	if !ok {
		return 0, 0
	}
	thisVal := goja.Value(c.rt.GlobalObject())
	if this != 0 {
		tv, ok := vm.resolveValues(c, []jscsys.ValueRef{this.Value()})
		if !ok {
			return 0, 0
		}
		thisVal = tv[0]
	}

	fn, callable := goja.AssertFunction(obj)
	if !callable {
		return 0, vm.wrap(c, c.rt.NewTypeError("object is not a function"))
	}
	res, err := fn(thisVal, vals...)
	if err != nil {
		return 0, vm.wrap(c, c.thrown(err))
	}
	return vm.wrap(c, res), 0
}

func (vm *VM) ObjectIsConstructor(ctx jscsys.ContextRef, o jscsys.ObjectRef) bool {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return false
	}
	if ce, ok := vm.instanceClass(c, obj); ok {
		return ce.callAsConstructor() != nil
	}
	return c.truthy("isConstructor", obj)
}

func (vm *VM) ObjectCallAsConstructor(ctx jscsys.ContextRef, o jscsys.ObjectRef, args []jscsys.ValueRef) (jscsys.ObjectRef, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	vals, ok := vm.resolveValues(c, args)
	if !ok {
		return 0, 0
	}
	items := make([]any, len(vals))
	for i, v := range vals {
		items[i] = v
	}
	res, exc := c.call("construct", nil, obj, c.rt.NewArray(items...))
	ref, excRef := vm.wrapPair(c, res, exc)
	return jscsys.ObjectRef(ref), excRef
}

func (vm *VM) ObjectCopyPropertyNames(ctx jscsys.ContextRef, o jscsys.ObjectRef) jscsys.PropertyNameArrayRef {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0
	}
	keys, exc := c.call("keys", nil, obj)
	if exc != nil {
		return 0
	}
	arr := keys.ToObject(c.rt)
	n := int(arr.Get("length").ToInteger())
	units := make([][]uint16, n)
	for i := range units {
		units[i] = c.units(arr.Get(fmt.Sprint(i)))
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	ref := jscsys.PropertyNameArrayRef(vm.alloc())
	na := &nameArray{refs: 1, names: make([]jscsys.StringRef, n)}
	for i, u := range units {
		s := jscsys.StringRef(vm.alloc())
		vm.strings[s] = &stringEntry{units: u, refs: 1, owner: ref}
		na.names[i] = s
	}
	vm.nameArrays[ref] = na
	vm.counts[KindNameArray].Created++
	return ref
}

func (vm *VM) PropertyNameArrayRetain(a jscsys.PropertyNameArrayRef) jscsys.PropertyNameArrayRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	na, ok := vm.nameArrays[a]
	if !ok {
		vm.violate("retain of dead name array %#x", uintptr(a))
		return a
	}
	na.refs++
	vm.counts[KindNameArray].Retained++
	return a
}

func (vm *VM) PropertyNameArrayRelease(a jscsys.PropertyNameArrayRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.counts[KindNameArray].Released++
	na, ok := vm.nameArrays[a]
	if !ok {
		vm.violate("release of dead name array %#x", uintptr(a))
		return
	}
	na.refs--
	if na.refs > 0 {
		return
	}
	delete(vm.nameArrays, a)
	for _, s := range na.names {
		if e, ok := vm.strings[s]; ok {
			e.refs--
			if e.refs <= 0 {
				delete(vm.strings, s)
			} else {
				e.owner = 0
			}
		}
	}
}

func (vm *VM) PropertyNameArrayGetCount(a jscsys.PropertyNameArrayRef) int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	na, ok := vm.nameArrays[a]
	if !ok {
		vm.violate("use of dead name array %#x", uintptr(a))
		return 0
	}
	return len(na.names)
}

func (vm *VM) PropertyNameArrayGetNameAtIndex(a jscsys.PropertyNameArrayRef, index int) jscsys.StringRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	na, ok := vm.nameArrays[a]
	if !ok {
		vm.violate("use of dead name array %#x", uintptr(a))
		return 0
	}
	if index < 0 || index >= len(na.names) {
		vm.violate("name array index %d out of range", index)
		return 0
	}
	return na.names[index]
}

// =====================
// Classes
// =====================

func (vm *VM) ClassCreate(def *jscsys.ClassDefinition) jscsys.ClassRef {
	if def == nil {
		return 0
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()

	ce := &classEntry{def: *def, refs: 1}
	if def.ParentClass != 0 {
		parent, ok := vm.classes[def.ParentClass]
		if !ok {
			vm.violate("class %q created with dead parent %#x", def.ClassName, uintptr(def.ParentClass))
			return 0
		}
		ce.parent = parent
	}
	ref := jscsys.ClassRef(vm.alloc())
	vm.classes[ref] = ce
	vm.counts[KindClass].Created++
	return ref
}

func (vm *VM) ClassRetain(c jscsys.ClassRef) jscsys.ClassRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	ce, ok := vm.classes[c]
	if !ok {
		vm.violate("retain of dead class %#x", uintptr(c))
		return c
	}
	ce.refs++
	vm.counts[KindClass].Retained++
	return c
}

func (vm *VM) ClassRelease(c jscsys.ClassRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.counts[KindClass].Released++
	ce, ok := vm.classes[c]
	if !ok {
		vm.violate("release of dead class %#x", uintptr(c))
		return
	}
	ce.refs--
	if ce.refs <= 0 {
		delete(vm.classes, c)
	}
}

// =====================
// Typed arrays
// =====================

func (vm *VM) ObjectMakeTypedArray(ctx jscsys.ContextRef, kind jscsys.TypedArrayType, length int) (jscsys.ObjectRef, jscsys.ValueRef) {
	c := vm.context(ctx)
	if c == nil {
		return 0, 0
	}
	if kind == jscsys.TypedArrayNone {
		return 0, vm.wrap(c, c.rt.NewTypeError("cannot make a typed array of kind None"))
	}
	a, exc := c.call("makeTypedArray", nil, c.rt.ToValue(kind.String()), c.rt.ToValue(length))
	ref, excRef := vm.wrapPair(c, a, exc)
	return jscsys.ObjectRef(ref), excRef
}

// typedArrayInfo returns length, byte length and byte offset of a typed
// array view. ok is false for anything else, including ArrayBuffer.
func (c *vmContext) typedArrayInfo(obj *goja.Object) (length, byteLength, byteOffset int, ok bool) {
	kind := c.typedArrayKind(obj)
	if kind == jscsys.TypedArrayNone || kind == jscsys.TypedArrayArrayBuffer {
		return 0, 0, 0, false
	}
	info, exc := c.call("typedArrayInfo", nil, obj)
	if exc != nil {
		return 0, 0, 0, false
	}
	arr := info.ToObject(c.rt)
	return int(arr.Get("0").ToInteger()), int(arr.Get("1").ToInteger()), int(arr.Get("2").ToInteger()), true
}

func (vm *VM) ObjectGetTypedArrayBytes(ctx jscsys.ContextRef, o jscsys.ObjectRef) ([]byte, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return nil, 0
	}
	_, byteLength, byteOffset, ok := c.typedArrayInfo(obj)
	if !ok {
		return nil, 0
	}
	buf, exc := c.call("buffer", nil, obj)
	if exc != nil {
		return nil, vm.wrap(c, exc)
	}
	ab, ok := buf.Export().(goja.ArrayBuffer)
	if !ok {
		return nil, 0
	}
	data := ab.Bytes()
	if byteOffset+byteLength > len(data) {
		return nil, vm.wrap(c, c.rt.NewTypeError("typed array is out of bounds"))
	}
	end := byteOffset + byteLength
	return data[byteOffset:end:end], 0
}

func (vm *VM) ObjectGetTypedArrayLength(ctx jscsys.ContextRef, o jscsys.ObjectRef) (int, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	n, _, _, _ := c.typedArrayInfo(obj)
	return n, 0
}

func (vm *VM) ObjectGetTypedArrayByteLength(ctx jscsys.ContextRef, o jscsys.ObjectRef) (int, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	_, n, _, _ := c.typedArrayInfo(obj)
	return n, 0
}

func (vm *VM) ObjectGetTypedArrayByteOffset(ctx jscsys.ContextRef, o jscsys.ObjectRef) (int, jscsys.ValueRef) {
	c, obj, ok := vm.resolveObject(ctx, o)
	if !ok {
		return 0, 0
	}
	_, _, n, _ := c.typedArrayInfo(obj)
	return n, 0
}
