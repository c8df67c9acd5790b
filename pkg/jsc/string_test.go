package jsc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
)

func TestJSStringRoundTrip(t *testing.T) {
	_, ctx := newTestContext(t)

	for _, s := range []string{"", "ascii", "naïve café", "日本語", "emoji 😀", "nul\x00inside"} {
		js, err := ctx.NewJSString(s)
		require.NoError(t, err)
		assert.Equal(t, s, js.String(), "%q", s)
		assert.True(t, js.EqualString(s), "%q", s)
		assert.Equal(t, s == "", js.IsEmpty())
		js.Release()
	}
}

func TestJSStringUTF16(t *testing.T) {
	_, ctx := newTestContext(t)

	units := []uint16{'a', 0, 0xD83D, 0xDE00, 0xD800, 'z'}
	js, err := ctx.NewJSStringUTF16(units)
	require.NoError(t, err)
	defer js.Release()

	assert.Equal(t, len(units), js.Len())
	assert.Equal(t, units, js.UTF16())
	// The lone surrogate decodes to the replacement character.
	assert.Equal(t, "a\x00😀�z", js.String())
	assert.False(t, js.EqualString(js.String()))
}

func TestJSStringEqual(t *testing.T) {
	_, ctx := newTestContext(t)

	a, err := ctx.NewJSString("same")
	require.NoError(t, err)
	defer a.Release()
	b, err := ctx.NewJSStringUTF16([]uint16{'s', 'a', 'm', 'e'})
	require.NoError(t, err)
	defer b.Release()
	c, err := ctx.NewJSString("other")
	require.NoError(t, err)
	defer c.Release()

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.EqualString("Same"))
}

func TestJSStringRelease(t *testing.T) {
	vm, ctx := newTestContext(t)

	before := vm.Counts(mockvm.KindString)
	js, err := ctx.NewJSString("x")
	require.NoError(t, err)
	js.Release()
	js.Release()

	after := vm.Counts(mockvm.KindString)
	assert.Equal(t, before.Created+1, after.Created)
	assert.Equal(t, before.Released+1, after.Released)
	assert.Equal(t, 0, js.Len())
	assert.Nil(t, js.UTF16())
	assert.False(t, js.EqualString("x"))
	assert.Empty(t, vm.Violations())
}

func TestValueToJSString(t *testing.T) {
	_, ctx := newTestContext(t)

	v := eval(t, ctx, "'a' + String.fromCharCode(0) + 'b'")
	js, err := v.ToJSString()
	require.NoError(t, err)
	defer js.Release()
	assert.Equal(t, []uint16{'a', 0, 'b'}, js.UTF16())
}
