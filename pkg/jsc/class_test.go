package jsc_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
)

func pointConstructor(ctx *jsc.Context, _ *jsc.Object, args []*jsc.Value) (*jsc.Object, error) {
	obj, err := ctx.NewObject()
	if err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return obj, nil
	}
	if err := obj.SetProperty("x", args[0]); err != nil {
		return nil, err
	}
	return obj, nil
}

func TestClassWithConstructor(t *testing.T) {
	_, ctx := newTestContext(t)

	cls, err := ctx.Group().NewClass(jsc.ClassDefinition{
		Name:        "Point",
		Constructor: pointConstructor,
		StaticValues: map[string]any{
			"dimensions": 2,
		},
		StaticFunctions: map[string]jsc.FunctionCallback{
			"origin": func(ctx *jsc.Context, _ *jsc.Object, _ []*jsc.Value) (*jsc.Value, error) {
				return ctx.NewString("0,0")
			},
		},
	})
	require.NoError(t, err)
	defer cls.Release()
	assert.Equal(t, "Point", cls.Name())

	point, err := cls.NewObject(ctx)
	require.NoError(t, err)
	assert.True(t, point.IsObjectOfClass(cls))
	assert.True(t, point.IsConstructor())
	setGlobal(t, ctx, "Point", point.Value)

	assert.Equal(t, 3.0, evalNumber(t, ctx, "new Point(3).x"))
	assert.Equal(t, 2.0, evalNumber(t, ctx, "Point.dimensions"))
	assert.Equal(t, "0,0", evalString(t, ctx, "Point.origin()"))

	// Statics are read-only and non-deletable.
	assert.Equal(t, 2.0, evalNumber(t, ctx, "Point.dimensions = 9; delete Point.dimensions; Point.dimensions"))

	plain, err := ctx.NewObject()
	require.NoError(t, err)
	assert.False(t, plain.IsObjectOfClass(cls))
}

func TestClassWithoutConstructor(t *testing.T) {
	_, ctx := newTestContext(t)

	cls, err := ctx.Group().NewClass(jsc.ClassDefinition{Name: "Bag"})
	require.NoError(t, err)
	defer cls.Release()

	bag, err := cls.NewObject(ctx)
	require.NoError(t, err)
	assert.False(t, bag.IsConstructor())
	assert.False(t, bag.IsFunction())
	setGlobal(t, ctx, "bag", bag.Value)

	_, err = ctx.EvaluateScript("new bag()")
	var exc *jsc.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "TypeError", exc.Name())
}

func TestClassCallAsFunction(t *testing.T) {
	_, ctx := newTestContext(t)

	cls, err := ctx.Group().NewClass(jsc.ClassDefinition{
		Name: "Doubler",
		CallAsFunction: func(ctx *jsc.Context, _ *jsc.Object, args []*jsc.Value) (*jsc.Value, error) {
			n, err := args[0].ToNumber()
			if err != nil {
				return nil, err
			}
			return ctx.NewNumber(2 * n)
		},
	})
	require.NoError(t, err)
	defer cls.Release()

	double, err := cls.NewObject(ctx)
	require.NoError(t, err)
	assert.True(t, double.IsFunction())
	setGlobal(t, ctx, "double", double.Value)
	assert.Equal(t, 42.0, evalNumber(t, ctx, "double(21)"))
}

func TestConstructorMustReturnObject(t *testing.T) {
	_, ctx := newTestContext(t)

	cls, err := ctx.Group().NewClass(jsc.ClassDefinition{
		Name: "Empty",
		Constructor: func(*jsc.Context, *jsc.Object, []*jsc.Value) (*jsc.Object, error) {
			return nil, nil
		},
	})
	require.NoError(t, err)
	defer cls.Release()

	empty, err := cls.NewObject(ctx)
	require.NoError(t, err)
	setGlobal(t, ctx, "Empty", empty.Value)

	assert.Equal(t, "constructor returned no object",
		evalString(t, ctx, "try { new Empty() } catch (e) { e.message }"))
}

func TestInvalidClassName(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, name := range []string{"", "bad\x00name"} {
		_, err := ctx.Group().NewClass(jsc.ClassDefinition{Name: name})
		assert.ErrorIs(t, err, jsc.ErrInvalidClassName, "name %q", name)
	}
}

func TestClassInheritance(t *testing.T) {
	_, ctx := newTestContext(t)
	g := ctx.Group()

	base, err := g.NewClass(jsc.ClassDefinition{
		Name:         "Base",
		StaticValues: map[string]any{"kind": "base", "shared": true},
	})
	require.NoError(t, err)
	defer base.Release()

	derived, err := g.NewClass(jsc.ClassDefinition{
		Name:         "Derived",
		Parent:       base,
		StaticValues: map[string]any{"kind": "derived"},
	})
	require.NoError(t, err)
	defer derived.Release()

	obj, err := derived.NewObject(ctx)
	require.NoError(t, err)
	assert.True(t, obj.IsObjectOfClass(derived))
	assert.True(t, obj.IsObjectOfClass(base))
	setGlobal(t, ctx, "obj", obj.Value)

	assert.Equal(t, "derived", evalString(t, ctx, "obj.kind"))
	assert.Equal(t, "true", evalString(t, ctx, "String(obj.shared)"))

	parentOnly, err := base.NewObject(ctx)
	require.NoError(t, err)
	assert.False(t, parentOnly.IsObjectOfClass(derived))
}

func describeCallback(ctx *jsc.Context, _ *jsc.Object, args []*jsc.Value) (*jsc.Value, error) {
	return ctx.NewString(fmt.Sprintf("called with %d", len(args)))
}

func TestClassInheritsCallbacks(t *testing.T) {
	_, ctx := newTestContext(t)
	g := ctx.Group()

	base, err := g.NewClass(jsc.ClassDefinition{
		Name:           "Base",
		Constructor:    pointConstructor,
		CallAsFunction: describeCallback,
	})
	require.NoError(t, err)
	defer base.Release()

	derived, err := g.NewClass(jsc.ClassDefinition{Name: "Derived", Parent: base})
	require.NoError(t, err)
	defer derived.Release()

	obj, err := derived.NewObject(ctx)
	require.NoError(t, err)
	assert.True(t, obj.IsConstructor())
	assert.True(t, obj.IsFunction())
	setGlobal(t, ctx, "Derived", obj.Value)

	assert.Equal(t, 4.0, evalNumber(t, ctx, "new Derived(4).x"))
	assert.Equal(t, "called with 2", evalString(t, ctx, "Derived(1, 2)"))
}

func TestGlobalClass(t *testing.T) {
	vm := mockvm.New()
	g, err := jsc.NewContextGroup(mockConfig(vm))
	require.NoError(t, err)

	cls, err := g.NewClass(jsc.ClassDefinition{
		Name: "Global",
		StaticFunctions: map[string]jsc.FunctionCallback{
			"hello": func(ctx *jsc.Context, _ *jsc.Object, _ []*jsc.Value) (*jsc.Value, error) {
				return ctx.NewString("hi")
			},
		},
	})
	require.NoError(t, err)

	ctx, err := g.NewContext(jsc.ContextConfig{Name: "main", GlobalClass: cls})
	require.NoError(t, err)

	global, err := ctx.GlobalObject()
	require.NoError(t, err)
	assert.True(t, global.IsObjectOfClass(cls))
	assert.Equal(t, "hi", evalString(t, ctx, "hello()"))
	name, err := ctx.Name()
	require.NoError(t, err)
	assert.Equal(t, "main", name)

	cls.Release()
	ctx.Release()
	g.Release()
	require.NoError(t, vm.CheckBalanced())
}

func TestClassFromForeignGroup(t *testing.T) {
	vm, ctx := newTestContext(t)

	other, err := jsc.NewContextGroup(mockConfig(vm))
	require.NoError(t, err)
	defer other.Release()
	cls, err := other.NewClass(jsc.ClassDefinition{Name: "Elsewhere"})
	require.NoError(t, err)
	defer cls.Release()

	_, err = cls.NewObject(ctx)
	assert.ErrorIs(t, err, jsc.ErrForeignGroup)
}

func TestReleasedClass(t *testing.T) {
	_, ctx := newTestContext(t)

	cls, err := ctx.Group().NewClass(jsc.ClassDefinition{Name: "Gone"})
	require.NoError(t, err)
	obj, err := cls.NewObject(ctx)
	require.NoError(t, err)
	cls.Release()
	cls.Release()

	_, err = cls.NewObject(ctx)
	assert.ErrorIs(t, err, jsc.ErrReleased)
	_, err = ctx.Group().NewClass(jsc.ClassDefinition{Name: "Child", Parent: cls})
	assert.ErrorIs(t, err, jsc.ErrReleased)

	// Existing instances stay usable.
	require.NoError(t, obj.SetProperty("ok", nil))
}
