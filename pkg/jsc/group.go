package jsc

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"weak"

	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// ContextGroup owns a native context group. Contexts in one group share a heap
// and may exchange Values.
//
// Ownership is counted: NewContextGroup hands out one owner reference, Retain
// adds one, Release drops one, and every Context in the group holds one. The
// native group is released exactly once, when the count reaches zero.
// Retain and Release are safe for concurrent use.
type ContextGroup struct {
	api    jscsys.API
	log    logging.Logger
	ref    jscsys.ContextGroupRef
	owners atomic.Int64
	own    *ownership

	mu       sync.Mutex
	contexts map[jscsys.ContextRef]weak.Pointer[Context]
}

// NewContextGroup creates an empty group.
func NewContextGroup(cfg Config) (*ContextGroup, error) {
	api, err := cfg.api()
	if err != nil {
		return nil, err
	}
	ref := api.ContextGroupCreate()
	if ref == 0 {
		return nil, &AllocationError{Op: "create context group"}
	}
	return newGroup(api, cfg.logger(), ref), nil
}

func newGroup(api jscsys.API, log logging.Logger, ref jscsys.ContextGroupRef) *ContextGroup {
	g := &ContextGroup{
		api:      api,
		log:      log,
		ref:      ref,
		own:      ownGroup(api, ref),
		contexts: make(map[jscsys.ContextRef]weak.Pointer[Context]),
	}
	g.owners.Store(1)
	runtime.SetFinalizer(g, (*ContextGroup).finalize)
	g.log.Debug(context.Background(), "context group created", logging.Handle("group", uintptr(ref)))
	return g
}

// Retain adds an owner reference. It fails with ErrReleased once the group is
// gone.
func (g *ContextGroup) Retain() error {
	for {
		n := g.owners.Load()
		if n <= 0 {
			return ErrReleased
		}
		if g.owners.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// Release drops an owner reference. Extra calls after the group is gone are
// no-ops.
func (g *ContextGroup) Release() {
	if g == nil {
		return
	}
	for {
		n := g.owners.Load()
		if n <= 0 {
			return
		}
		if g.owners.CompareAndSwap(n, n-1) {
			if n == 1 {
				g.destroy()
			}
			return
		}
	}
}

func (g *ContextGroup) destroy() {
	runtime.SetFinalizer(g, nil)
	if g.own.release() {
		g.log.Debug(context.Background(), "context group released", logging.Handle("group", uintptr(g.ref)))
	}
}

// finalize runs only when the caller dropped the group without releasing it.
// Contexts hold the group strongly, so by now none of them is reachable.
func (g *ContextGroup) finalize() {
	if g.owners.Swap(0) > 0 && g.own.release() {
		g.log.Warn(context.Background(), "context group leaked; released by finalizer", logging.Handle("group", uintptr(g.ref)))
	}
}

func (g *ContextGroup) live() error {
	if g == nil || g.own.released() {
		return ErrReleased
	}
	return nil
}

// NewContext creates a global context in the group. The context holds an
// owner reference on the group until it is released.
func (g *ContextGroup) NewContext(cc ContextConfig) (*Context, error) {
	if err := g.Retain(); err != nil {
		return nil, err
	}

	var class jscsys.ClassRef
	if cc.GlobalClass != nil {
		if err := cc.GlobalClass.live(); err != nil {
			g.Release()
			return nil, err
		}
		class = cc.GlobalClass.ref
	}

	ref := g.api.GlobalContextCreateInGroup(g.ref, class)
	if ref == 0 {
		g.Release()
		return nil, &AllocationError{Op: "create global context"}
	}

	c := newContext(g, ref)
	if cc.Name != "" {
		if err := c.SetName(cc.Name); err != nil {
			c.Release()
			return nil, err
		}
	}
	if cc.GlobalClass != nil {
		global, err := c.GlobalObject()
		if err == nil {
			err = cc.GlobalClass.installStatics(c, global)
			global.Free()
		}
		if err != nil {
			c.Release()
			return nil, err
		}
	}
	return c, nil
}

// GarbageCollect asks the engine to collect the group through any of its live
// contexts. Wrapped Values stay protected and remain valid.
func (g *ContextGroup) GarbageCollect() {
	if c := g.anyContext(); c != nil {
		c.GarbageCollect()
	}
}

func (g *ContextGroup) register(c *Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.contexts[c.ref] = weak.Make(c)
}

func (g *ContextGroup) unregister(ref jscsys.ContextRef) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.contexts, ref)
}

// lookup maps a context handle received in a callback back to its Context.
// Callbacks may receive an execution context, so it is first resolved to its
// global context.
func (g *ContextGroup) lookup(ref jscsys.ContextRef) *Context {
	global := g.api.ContextGetGlobalContext(ref)
	g.mu.Lock()
	wp, ok := g.contexts[global]
	g.mu.Unlock()
	if !ok {
		return nil
	}
	c := wp.Value()
	if c == nil || c.live() != nil {
		return nil
	}
	return c
}

func (g *ContextGroup) anyContext() *Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, wp := range g.contexts {
		if c := wp.Value(); c != nil && c.live() == nil {
			return c
		}
	}
	return nil
}
