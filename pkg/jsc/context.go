package jsc

import (
	"context"
	"runtime"
	"sync"

	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// Context is a global JavaScript execution context.
//
// A Context and the Values created in it are not safe for concurrent use.
// Release may race only with finalizer-driven Value.Free, which it excludes.
type Context struct {
	group *ContextGroup
	api   jscsys.API
	log   logging.Logger
	ref   jscsys.ContextRef

	// mu orders Release (write) against Value.Free (read).
	mu     sync.RWMutex
	own    *ownership
	values *valueSet
}

// valueSet holds the ownerships of the Values a Context still owns. It is kept
// apart from Context so the release closure does not point back at it, which
// would keep the Context finalizer from ever running.
type valueSet struct {
	mu sync.Mutex
	m  map[*ownership]struct{}
}

func (s *valueSet) add(o *ownership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[o] = struct{}{}
}

func (s *valueSet) remove(o *ownership) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, o)
}

func (s *valueSet) take() []*ownership {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*ownership, 0, len(s.m))
	for o := range s.m {
		out = append(out, o)
	}
	clear(s.m)
	return out
}

// NewContext creates a context in a fresh group of its own. The group is
// released together with the context.
func NewContext(cfg Config) (*Context, error) {
	g, err := NewContextGroup(cfg)
	if err != nil {
		return nil, err
	}
	defer g.Release()
	return g.NewContext(ContextConfig{})
}

func newContext(g *ContextGroup, ref jscsys.ContextRef) *Context {
	c := &Context{
		group:  g,
		api:    g.api,
		log:    g.log.With(logging.Handle("context", uintptr(ref))),
		ref:    ref,
		values: &valueSet{m: make(map[*ownership]struct{})},
	}
	c.own = ownContext(c.api, ref, c.values)
	g.register(c)
	runtime.SetFinalizer(c, (*Context).finalize)
	c.log.Debug(context.Background(), "context created", logging.Handle("group", uintptr(g.ref)))
	return c
}

// Release destroys the context. Every Value still owned by it is unprotected
// first and becomes inert. Further calls are no-ops.
func (c *Context) Release() {
	if c == nil {
		return
	}
	c.mu.Lock()
	released := c.own.release()
	c.mu.Unlock()
	if !released {
		return
	}
	runtime.SetFinalizer(c, nil)
	c.group.unregister(c.ref)
	c.log.Debug(context.Background(), "context released")
	c.group.Release()
}

func (c *Context) finalize() {
	c.mu.Lock()
	released := c.own.release()
	c.mu.Unlock()
	if !released {
		return
	}
	c.group.unregister(c.ref)
	c.log.Warn(context.Background(), "context leaked; released by finalizer")
	c.group.Release()
}

func (c *Context) live() error {
	if c == nil || c.own.released() {
		return ErrReleased
	}
	return nil
}

// Group returns the group the context belongs to.
func (c *Context) Group() *ContextGroup { return c.group }

// GlobalObject returns the context's global object.
func (c *Context) GlobalObject() (*Object, error) {
	if err := c.live(); err != nil {
		return nil, err
	}
	ref := c.api.ContextGetGlobalObject(c.ref)
	if ref == 0 {
		return nil, &AllocationError{Op: "global object"}
	}
	return c.wrapObject(ref), nil
}

// Name returns the debugger name of the context, or "" when it has none.
func (c *Context) Name() (string, error) {
	if err := c.live(); err != nil {
		return "", err
	}
	ref := c.api.GlobalContextCopyName(c.ref)
	if ref == 0 {
		return "", nil
	}
	defer releaseString(c.api, ref)
	return goString(c.api, ref), nil
}

// SetName sets the debugger name. An empty name clears it.
func (c *Context) SetName(name string) error {
	if err := c.live(); err != nil {
		return err
	}
	if name == "" {
		c.api.GlobalContextSetName(c.ref, 0)
		return nil
	}
	ref := jsString(c.api, name)
	defer releaseString(c.api, ref)
	c.api.GlobalContextSetName(c.ref, ref)
	return nil
}

// GarbageCollect asks the engine to collect. Values wrapped by this package
// stay protected and remain valid.
func (c *Context) GarbageCollect() {
	if c.live() != nil {
		return
	}
	c.log.Debug(context.Background(), "garbage collect")
	c.api.GarbageCollect(c.ref)
}

// =====================
// Wrapping
// =====================

// wrap takes ownership of ref by protecting it. A zero ref yields nil.
func (c *Context) wrap(ref jscsys.ValueRef) *Value {
	if ref == 0 {
		return nil
	}
	c.api.ValueProtect(c.ref, ref)
	v := &Value{ctx: c, ref: ref, own: ownValue(c.api, c.ref, ref)}
	c.values.add(v.own)
	runtime.SetFinalizer(v, (*Value).Free)
	return v
}

func (c *Context) wrapObject(ref jscsys.ObjectRef) *Object {
	v := c.wrap(ref.Value())
	if v == nil {
		return nil
	}
	return &Object{Value: v}
}

func (c *Context) wrapAll(refs []jscsys.ValueRef) []*Value {
	out := make([]*Value, len(refs))
	for i, r := range refs {
		out[i] = c.wrap(r)
	}
	return out
}

// exception wraps a thrown value as an *Exception.
func (c *Context) exception(ref jscsys.ValueRef) error {
	return newException(c.wrap(ref))
}

// valueRef checks that v is usable in c. A nil v is undefined.
func (c *Context) valueRef(v *Value) (jscsys.ValueRef, error) {
	if v == nil {
		return c.api.ValueMakeUndefined(c.ref), nil
	}
	if err := v.live(); err != nil {
		return 0, err
	}
	if v.ctx.group != c.group {
		return 0, ErrForeignGroup
	}
	return v.ref, nil
}

func (c *Context) valueRefs(vals []*Value) ([]jscsys.ValueRef, error) {
	refs := make([]jscsys.ValueRef, len(vals))
	for i, v := range vals {
		r, err := c.valueRef(v)
		if err != nil {
			return nil, err
		}
		refs[i] = r
	}
	return refs, nil
}

// objectRef is like valueRef for an optional object. A nil o yields 0.
func (c *Context) objectRef(o *Object) (jscsys.ObjectRef, error) {
	if o == nil || o.Value == nil {
		return 0, nil
	}
	r, err := c.valueRef(o.Value)
	return jscsys.ObjectRef(r), err
}
