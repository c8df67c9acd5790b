package jsc

import (
	"context"
	"maps"
	"runtime"
	"slices"
	"strings"

	"github.com/javascriptcore-go/jsc/pkg/jscsys"
)

// ClassDefinition describes a class of host objects.
type ClassDefinition struct {
	// Name must be non-empty and free of NUL.
	Name string

	// Parent, when set, makes instances also instances of Parent. Callbacks
	// not set here are inherited.
	Parent *Class

	// Constructor handles `new obj(...)` on an instance. Nil leaves instances
	// non-constructible.
	Constructor ConstructorCallback

	// CallAsFunction handles `obj(...)` on an instance.
	CallAsFunction FunctionCallback

	// StaticFunctions are installed on every instance as read-only,
	// non-deletable properties.
	StaticFunctions map[string]FunctionCallback

	// StaticValues are converted with Context.ValueOf and installed on every
	// instance as read-only, non-deletable properties.
	StaticValues map[string]any
}

// Class is a native class template. One Class can be instantiated any number
// of times, in any context of its group.
type Class struct {
	group *ContextGroup
	ref   jscsys.ClassRef
	def   ClassDefinition
	own   *ownership
}

// NewClass creates a class from def.
func (g *ContextGroup) NewClass(def ClassDefinition) (*Class, error) {
	if err := g.live(); err != nil {
		return nil, err
	}
	if def.Name == "" || strings.IndexByte(def.Name, 0) >= 0 {
		return nil, ErrInvalidClassName
	}

	raw := &jscsys.ClassDefinition{ClassName: def.Name}
	if def.Parent != nil {
		if err := def.Parent.live(); err != nil {
			return nil, err
		}
		raw.ParentClass = def.Parent.ref
	}
	if def.Constructor != nil {
		raw.CallAsConstructor = g.constructorCallback(def.Constructor)
	}
	if def.CallAsFunction != nil {
		raw.CallAsFunction = g.functionCallback(def.CallAsFunction)
	}

	ref := g.api.ClassCreate(raw)
	if ref == 0 {
		return nil, &AllocationError{Op: "create class " + def.Name}
	}
	cls := &Class{group: g, ref: ref, def: def, own: ownClass(g.api, ref)}
	runtime.SetFinalizer(cls, (*Class).Release)
	g.log.Debug(context.Background(), "class created", "class", def.Name)
	return cls, nil
}

// Name returns the class name.
func (cls *Class) Name() string { return cls.def.Name }

func (cls *Class) live() error {
	if cls == nil || cls.own.released() {
		return ErrReleased
	}
	return nil
}

// Release drops the class. Existing instances stay valid.
func (cls *Class) Release() {
	if cls == nil {
		return
	}
	if cls.own.release() {
		runtime.SetFinalizer(cls, nil)
		cls.group.log.Debug(context.Background(), "class released", "class", cls.def.Name)
	}
}

// NewObject instantiates the class in ctx and installs its statics.
func (cls *Class) NewObject(ctx *Context) (*Object, error) {
	if err := cls.live(); err != nil {
		return nil, err
	}
	if err := ctx.live(); err != nil {
		return nil, err
	}
	if ctx.group != cls.group {
		return nil, ErrForeignGroup
	}
	obj := ctx.wrapObject(ctx.api.ObjectMake(ctx.ref, cls.ref))
	if obj == nil {
		return nil, &AllocationError{Op: "instantiate class " + cls.def.Name}
	}
	if err := cls.installStatics(ctx, obj); err != nil {
		obj.Free()
		return nil, &AllocationError{Op: "instantiate class " + cls.def.Name + ": " + err.Error()}
	}
	return obj, nil
}

// installStatics defines the static functions and values of the class and its
// parents on obj. A child's statics win over a parent's of the same name.
func (cls *Class) installStatics(ctx *Context, obj *Object) error {
	funcs := make(map[string]FunctionCallback)
	values := make(map[string]any)
	for c := cls; c != nil; c = c.def.Parent {
		for name, fn := range c.def.StaticFunctions {
			if _, ok := funcs[name]; !ok {
				funcs[name] = fn
			}
		}
		for name, x := range c.def.StaticValues {
			if _, ok := values[name]; !ok {
				values[name] = x
			}
		}
	}

	const attrs = ReadOnly | DontDelete
	for _, name := range slices.Sorted(maps.Keys(funcs)) {
		fn, err := ctx.NewFunction(name, funcs[name])
		if err != nil {
			return err
		}
		err = obj.SetProperty(name, fn.Value, attrs)
		fn.Free()
		if err != nil {
			return err
		}
	}
	for _, name := range slices.Sorted(maps.Keys(values)) {
		x := values[name]
		v, err := ctx.ValueOf(x)
		if err != nil {
			return err
		}
		err = obj.SetProperty(name, v, attrs)
		freeConverted(x, v)
		if err != nil {
			return err
		}
	}
	return nil
}
