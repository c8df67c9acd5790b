package mockvm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// Kind identifies a reference-counted handle kind.
type Kind int

const (
	KindGroup Kind = iota
	KindContext
	KindString
	KindClass
	KindNameArray
	// KindProtection counts JSValueProtect / JSValueUnprotect pairs.
	KindProtection
	kindCount
)

var kindNames = [...]string{"group", "context", "string", "class", "name array", "value protection"}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Count tallies calls for one handle kind. A balanced kind has
// Created+Retained == Released.
type Count struct {
	Created  int
	Retained int
	Released int
}

// Outstanding is the number of releases still owed.
func (c Count) Outstanding() int { return c.Created + c.Retained - c.Released }

// Option configures a VM.
type Option func(*VM)

// WithPanicOnViolation makes the VM panic at the first violation, which puts
// the offending call on the stack.
func WithPanicOnViolation() Option {
	return func(vm *VM) { vm.panicOnViolation = true }
}

// VM implements jscsys.API. Table access is guarded by one mutex that is
// never held while JavaScript runs, so host callbacks may re-enter the VM.
type VM struct {
	mu         sync.Mutex
	next       uintptr
	groups     map[jscsys.ContextGroupRef]*group
	contexts   map[jscsys.ContextRef]*vmContext
	values     map[jscsys.ValueRef]*valueEntry
	strings    map[jscsys.StringRef]*stringEntry
	classes    map[jscsys.ClassRef]*classEntry
	nameArrays map[jscsys.PropertyNameArrayRef]*nameArray
	counts     [kindCount]Count
	violations []error

	panicOnViolation bool
}

type group struct {
	ref  jscsys.ContextGroupRef
	refs int
}

type vmContext struct {
	ref       jscsys.ContextRef
	group     *group
	rt        *goja.Runtime
	h         helpers
	refs      int
	name      []uint16
	named     bool
	instances map[*goja.Object]*classEntry
}

type valueEntry struct {
	ctx      *vmContext
	val      goja.Value
	protects int
	pinned   int
}

type stringEntry struct {
	units []uint16
	refs  int
	owner jscsys.PropertyNameArrayRef
}

type classEntry struct {
	def    jscsys.ClassDefinition
	parent *classEntry
	refs   int
}

type nameArray struct {
	names []jscsys.StringRef
	refs  int
}

// New returns an empty VM.
func New(opts ...Option) *VM {
	vm := &VM{
		next:       0x1000,
		groups:     make(map[jscsys.ContextGroupRef]*group),
		contexts:   make(map[jscsys.ContextRef]*vmContext),
		values:     make(map[jscsys.ValueRef]*valueEntry),
		strings:    make(map[jscsys.StringRef]*stringEntry),
		classes:    make(map[jscsys.ClassRef]*classEntry),
		nameArrays: make(map[jscsys.PropertyNameArrayRef]*nameArray),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// =====================
// Instrumentation
// =====================

// Counts returns the call tally for kind.
func (vm *VM) Counts(kind Kind) Count {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.counts[kind]
}

// Live returns how many handles of kind are still alive. For
// KindProtection it is the number of outstanding protections.
func (vm *VM) Live(kind Kind) int {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	switch kind {
	case KindGroup:
		return len(vm.groups)
	case KindContext:
		return len(vm.contexts)
	case KindString:
		n := 0
		for _, s := range vm.strings {
			if s.owner == 0 {
				n++
			}
		}
		return n
	case KindClass:
		return len(vm.classes)
	case KindNameArray:
		return len(vm.nameArrays)
	case KindProtection:
		n := 0
		for _, v := range vm.values {
			n += v.protects
		}
		return n
	}
	return 0
}

// Violations returns every discipline violation recorded so far.
func (vm *VM) Violations() []error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return append([]error(nil), vm.violations...)
}

// CheckBalanced reports every kind whose releases do not match its creations
// and retains, plus all recorded violations. It returns nil for a VM that has
// been used with exact retain/release discipline.
func (vm *VM) CheckBalanced() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var errs []error
	for k := Kind(0); k < kindCount; k++ {
		c := vm.counts[k]
		if c.Outstanding() != 0 {
			errs = append(errs, fmt.Errorf("mockvm: %s: created %d + retained %d != released %d",
				k, c.Created, c.Retained, c.Released))
		}
	}
	errs = append(errs, vm.violations...)
	return errors.Join(errs...)
}

// violate records a violation. Callers hold vm.mu.
func (vm *VM) violate(format string, args ...any) {
	err := fmt.Errorf("mockvm: "+format, args...)
	vm.violations = append(vm.violations, err)
	if vm.panicOnViolation {
		panic(err)
	}
}

func (vm *VM) report(format string, args ...any) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.violate(format, args...)
}

// alloc returns a fresh handle value. Callers hold vm.mu.
func (vm *VM) alloc() uintptr {
	vm.next += 0x10
	return vm.next
}

// =====================
// Table lookups
// =====================

func (vm *VM) context(ref jscsys.ContextRef) *vmContext {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.contextLocked(ref)
}

func (vm *VM) contextLocked(ref jscsys.ContextRef) *vmContext {
	c, ok := vm.contexts[ref]
	if !ok {
		vm.violate("use of dead context handle %#x", uintptr(ref))
		return nil
	}
	return c
}

// valueLocked resolves v for use in c.
func (vm *VM) valueLocked(c *vmContext, v jscsys.ValueRef) (goja.Value, bool) {
	e, ok := vm.values[v]
	if !ok {
		vm.violate("use of dead value handle %#x", uintptr(v))
		return nil, false
	}
	if e.ctx.group != c.group {
		vm.violate("value %#x used outside its context group", uintptr(v))
		return nil, false
	}
	if e.ctx != c {
		if _, isObj := e.val.(*goja.Object); isObj {
			vm.violate("object %#x used in a sibling context (unsupported by mockvm)", uintptr(v))
			return nil, false
		}
	}
	return e.val, true
}

// resolve looks up a context and any number of values in one step.
func (vm *VM) resolve(ctx jscsys.ContextRef, refs ...jscsys.ValueRef) (*vmContext, []goja.Value, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	c := vm.contextLocked(ctx)
	if c == nil {
		return nil, nil, false
	}
	vals := make([]goja.Value, len(refs))
	for i, r := range refs {
		v, ok := vm.valueLocked(c, r)
		if !ok {
			return nil, nil, false
		}
		vals[i] = v
	}
	return c, vals, true
}

func (vm *VM) resolveObject(ctx jscsys.ContextRef, o jscsys.ObjectRef) (*vmContext, *goja.Object, bool) {
	c, vals, ok := vm.resolve(ctx, o.Value())
	if !ok {
		return nil, nil, false
	}
	obj, isObj := vals[0].(*goja.Object)
	if !isObj {
		vm.report("handle %#x is not an object", uintptr(o))
		return nil, nil, false
	}
	return c, obj, true
}

func (vm *VM) resolveValues(c *vmContext, refs []jscsys.ValueRef) ([]goja.Value, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vals := make([]goja.Value, len(refs))
	for i, r := range refs {
		v, ok := vm.valueLocked(c, r)
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// wrap registers v as a new unprotected value handle. A nil v yields 0.
func (vm *VM) wrap(c *vmContext, v goja.Value) jscsys.ValueRef {
	if v == nil {
		return 0
	}
	vm.mu.Lock()
	defer vm.mu.Unlock()
	ref := jscsys.ValueRef(vm.alloc())
	vm.values[ref] = &valueEntry{ctx: c, val: v}
	return ref
}

func (vm *VM) wrapPair(c *vmContext, v, exc goja.Value) (jscsys.ValueRef, jscsys.ValueRef) {
	if exc != nil {
		return 0, vm.wrap(c, exc)
	}
	return vm.wrap(c, v), 0
}

// pin registers callback arguments. They stay valid until unpin.
func (vm *VM) pin(c *vmContext, vals ...goja.Value) []jscsys.ValueRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	refs := make([]jscsys.ValueRef, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		ref := jscsys.ValueRef(vm.alloc())
		vm.values[ref] = &valueEntry{ctx: c, val: v, pinned: 1}
		refs[i] = ref
	}
	return refs
}

// unpin drops argument handles that nobody protected.
func (vm *VM) unpin(refs []jscsys.ValueRef) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, ref := range refs {
		e, ok := vm.values[ref]
		if !ok {
			continue
		}
		e.pinned--
		if e.pinned <= 0 && e.protects == 0 {
			delete(vm.values, ref)
		}
	}
}

func (vm *VM) lookupValue(c *vmContext, ref jscsys.ValueRef) goja.Value {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	v, ok := vm.valueLocked(c, ref)
	if !ok {
		return goja.Undefined()
	}
	return v
}

func (vm *VM) stringUnits(ref jscsys.StringRef) ([]uint16, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	s, ok := vm.strings[ref]
	if !ok {
		vm.violate("use of dead string handle %#x", uintptr(ref))
		return nil, false
	}
	return s.units, true
}

// newString registers a caller-owned string.
func (vm *VM) newString(units []uint16) jscsys.StringRef {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	ref := jscsys.StringRef(vm.alloc())
	vm.strings[ref] = &stringEntry{units: units, refs: 1}
	vm.counts[KindString].Created++
	return ref
}

// =====================
// Script helpers
// =====================

// call runs a helper and splits the outcome into result and thrown value.
func (c *vmContext) call(name string, this goja.Value, args ...goja.Value) (goja.Value, goja.Value) {
	fn := c.h[name]
	if this == nil {
		this = goja.Undefined()
	}
	res, err := fn(this, args...)
	if err != nil {
		return nil, c.thrown(err)
	}
	return res, nil
}

// thrown converts a goja error into the JS value that was thrown.
func (c *vmContext) thrown(err error) goja.Value {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return ex.Value()
	}
	var syn *goja.CompilerSyntaxError
	if errors.As(err, &syn) {
		v, _ := c.h["syntaxError"](goja.Undefined(), c.rt.ToValue(syn.Error()))
		return v
	}
	v, _ := c.h["error"](goja.Undefined(), c.rt.ToValue(err.Error()))
	return v
}

func (c *vmContext) truthy(name string, args ...goja.Value) bool {
	v, exc := c.call(name, nil, args...)
	return exc == nil && v.ToBoolean()
}

// jsString builds a JS string from UTF-16 code units without loss.
func (c *vmContext) jsString(units []uint16) goja.Value {
	if validUTF16(units) {
		return c.rt.ToValue(string(utf16.Decode(units)))
	}
	codes := make([]any, len(units))
	for i, u := range units {
		codes[i] = int64(u)
	}
	v, exc := c.call("fromCharCodes", nil, c.rt.NewArray(codes...))
	if exc != nil {
		return c.rt.ToValue(string(utf16.Decode(units)))
	}
	return v
}

// units returns the UTF-16 code units of a JS string value without loss.
func (c *vmContext) units(v goja.Value) []uint16 {
	s := v.String()
	if !strings.ContainsRune(s, utf8.RuneError) {
		return utf16.Encode([]rune(s))
	}
	arr, exc := c.call("charCodes", nil, v)
	if exc != nil {
		return utf16.Encode([]rune(s))
	}
	obj := arr.ToObject(c.rt)
	n := int(obj.Get("length").ToInteger())
	out := make([]uint16, n)
	for i := range out {
		out[i] = uint16(obj.Get(strconv.Itoa(i)).ToInteger())
	}
	return out
}

func validUTF16(units []uint16) bool {
	for i := 0; i < len(units); i++ {
		u := units[i]
		switch {
		case u >= 0xD800 && u < 0xDC00:
			if i+1 >= len(units) || units[i+1] < 0xDC00 || units[i+1] >= 0xE000 {
				return false
			}
			i++
		case u >= 0xDC00 && u < 0xE000:
			return false
		}
	}
	return true
}

func (ce *classEntry) callAsFunction() jscsys.FunctionCallback {
	for e := ce; e != nil; e = e.parent {
		if e.def.CallAsFunction != nil {
			return e.def.CallAsFunction
		}
	}
	return nil
}

func (ce *classEntry) callAsConstructor() jscsys.ConstructorCallback {
	for e := ce; e != nil; e = e.parent {
		if e.def.CallAsConstructor != nil {
			return e.def.CallAsConstructor
		}
	}
	return nil
}

func (ce *classEntry) inherits(other *classEntry) bool {
	for e := ce; e != nil; e = e.parent {
		if e == other {
			return true
		}
	}
	return false
}
