package jsc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
)

func TestValueTypes(t *testing.T) {
	_, ctx := newTestContext(t)

	cases := []struct {
		src  string
		want jsc.Type
	}{
		{"undefined", jsc.TypeUndefined},
		{"null", jsc.TypeNull},
		{"true", jsc.TypeBoolean},
		{"1.5", jsc.TypeNumber},
		{"'s'", jsc.TypeString},
		{"({})", jsc.TypeObject},
		{"(function () {})", jsc.TypeObject},
		{"Symbol('s')", jsc.TypeSymbol},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			v := eval(t, ctx, tc.src)
			defer v.Free()
			got, err := v.Type()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValuePredicates(t *testing.T) {
	_, ctx := newTestContext(t)

	arr := eval(t, ctx, "[1, 2]")
	assert.True(t, arr.IsArray())
	assert.True(t, arr.IsObject())
	assert.False(t, arr.IsDate())

	date := eval(t, ctx, "new Date(0)")
	assert.True(t, date.IsDate())

	sym, err := ctx.NewSymbol("tag")
	require.NoError(t, err)
	assert.True(t, sym.IsSymbol())

	null, err := ctx.NewNull()
	require.NoError(t, err)
	assert.True(t, null.IsNull())
	undef, err := ctx.NewUndefined()
	require.NoError(t, err)
	assert.True(t, undef.IsUndefined())
}

func TestStringValueRoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, s := range []string{"", "hello", "héllo wörld", "emoji 😀", "nul\x00inside"} {
		v, err := ctx.NewString(s)
		require.NoError(t, err)
		got, err := v.ToString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
		v.Free()
	}
}

func TestUTF16ValueRoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	units := []uint16{0xD800, 'x', 0, 0xDFFF, 0xD83D, 0xDE00}
	v, err := ctx.NewStringUTF16(units)
	require.NoError(t, err)
	s, err := v.ToJSString()
	require.NoError(t, err)
	defer s.Release()
	assert.Equal(t, units, s.UTF16())
	assert.Equal(t, len(units), s.Len())
}

func TestConversions(t *testing.T) {
	_, ctx := newTestContext(t)

	v := eval(t, ctx, "'42'")
	n, err := v.ToNumber()
	require.NoError(t, err)
	assert.Equal(t, 42.0, n)

	b, err := v.ToBoolean()
	require.NoError(t, err)
	assert.True(t, b)

	obj, err := v.ToObject()
	require.NoError(t, err)
	length, err := obj.Property("length")
	require.NoError(t, err)
	l, err := length.ToNumber()
	require.NoError(t, err)
	assert.Equal(t, 2.0, l)
}

func TestSymbolToStringFails(t *testing.T) {
	_, ctx := newTestContext(t)

	sym, err := ctx.NewSymbol("s")
	require.NoError(t, err)
	_, err = sym.ToString()
	require.ErrorIs(t, err, jsc.ErrConversion)

	var conv *jsc.ConversionError
	require.ErrorAs(t, err, &conv)
	assert.Equal(t, jsc.TypeSymbol, conv.From)
	assert.Equal(t, "string", conv.To)

	var exc *jsc.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "TypeError", exc.Name())
}

func TestToObjectOfNullFails(t *testing.T) {
	_, ctx := newTestContext(t)

	null, err := ctx.NewNull()
	require.NoError(t, err)
	_, err = null.ToObject()
	assert.ErrorIs(t, err, jsc.ErrConversion)

	_, err = null.AsObject()
	assert.ErrorIs(t, err, jsc.ErrConversion)
}

func TestEquality(t *testing.T) {
	_, ctx := newTestContext(t)

	one, err := ctx.NewNumber(1)
	require.NoError(t, err)
	str, err := ctx.NewString("1")
	require.NoError(t, err)

	eq, err := one.Equals(str)
	require.NoError(t, err)
	assert.True(t, eq)

	strict, err := one.StrictEquals(str)
	require.NoError(t, err)
	assert.False(t, strict)

	thrower := eval(t, ctx, "({valueOf: function () { throw new Error('no') }})")
	_, err = thrower.Equals(one)
	var exc *jsc.Exception
	require.ErrorAs(t, err, &exc)
	assert.Equal(t, "no", exc.Message())
}

func TestInstanceOf(t *testing.T) {
	_, ctx := newTestContext(t)

	arr := eval(t, ctx, "[]")
	ctor := eval(t, ctx, "Array")
	ctorObj, err := ctor.AsObject()
	require.NoError(t, err)

	ok, err := arr.InstanceOf(ctorObj)
	require.NoError(t, err)
	assert.True(t, ok)

	num, err := ctx.NewNumber(1)
	require.NoError(t, err)
	ok, err = num.InstanceOf(ctorObj)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestJSON(t *testing.T) {
	_, ctx := newTestContext(t)

	v, err := ctx.NewFromJSON(`{"a":[1,2],"b":"x"}`)
	require.NoError(t, err)
	doc, err := v.ToJSON(0)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2],"b":"x"}`, doc)

	pretty, err := v.ToJSON(2)
	require.NoError(t, err)
	assert.Contains(t, pretty, "\n  \"a\"")

	_, err = ctx.NewFromJSON("{")
	assert.ErrorIs(t, err, jsc.ErrConversion)

	undef, err := ctx.NewUndefined()
	require.NoError(t, err)
	_, err = undef.ToJSON(0)
	assert.ErrorIs(t, err, jsc.ErrConversion)

	cyclic := eval(t, ctx, "var o = {}; o.self = o; o")
	_, err = cyclic.ToJSON(0)
	var exc *jsc.Exception
	assert.ErrorAs(t, err, &exc)
}

func TestValueOfAndExport(t *testing.T) {
	_, ctx := newTestContext(t)

	v, err := ctx.ValueOf(map[string]any{
		"b": []any{true, "x", nil, 3},
		"a": uint8(1),
	})
	require.NoError(t, err)
	doc, err := v.ToJSON(0)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":[true,"x",null,3]}`, doc)

	out, err := v.Export()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0, "b": []any{true, "x", nil, 3.0}}, out)

	_, err = ctx.ValueOf(struct{}{})
	assert.ErrorIs(t, err, jsc.ErrConversion)

	same, err := ctx.ValueOf(v)
	require.NoError(t, err)
	assert.Same(t, v, same)

	s, err := ctx.ValueOf("str")
	require.NoError(t, err)
	exported, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, "str", exported)
}

func TestForeignGroupValueRejected(t *testing.T) {
	vm, ctxA := newTestContext(t)
	ctxB, err := jsc.NewContext(mockConfig(vm))
	require.NoError(t, err)
	defer ctxB.Release()

	v, err := ctxA.NewNumber(1)
	require.NoError(t, err)

	globalB, err := ctxB.GlobalObject()
	require.NoError(t, err)
	assert.ErrorIs(t, globalB.SetProperty("x", v), jsc.ErrForeignGroup)

	other, err := ctxB.NewNumber(1)
	require.NoError(t, err)
	_, err = v.StrictEquals(other)
	assert.ErrorIs(t, err, jsc.ErrForeignGroup)

	_, err = ctxB.ValueOf(v)
	assert.ErrorIs(t, err, jsc.ErrForeignGroup)
	assert.Empty(t, vm.Violations())
}

func TestSameGroupValueAccepted(t *testing.T) {
	vm := mockvm.New()
	g, err := jsc.NewContextGroup(mockConfig(vm))
	require.NoError(t, err)
	defer g.Release()

	a, err := g.NewContext(jsc.ContextConfig{})
	require.NoError(t, err)
	defer a.Release()
	b, err := g.NewContext(jsc.ContextConfig{})
	require.NoError(t, err)
	defer b.Release()

	v, err := a.NewNumber(21)
	require.NoError(t, err)
	setGlobal(t, b, "x", v)
	assert.Equal(t, 42.0, evalNumber(t, b, "x * 2"))
	assert.Empty(t, vm.Violations())
}
