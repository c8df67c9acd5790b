package jsc_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
)

func TestHostFunction(t *testing.T) {
	_, ctx := newTestContext(t)

	add, err := ctx.NewFunction("add", func(ctx *jsc.Context, _ *jsc.Object, args []*jsc.Value) (*jsc.Value, error) {
		var sum float64
		for _, a := range args {
			n, err := a.ToNumber()
			if err != nil {
				return nil, err
			}
			sum += n
		}
		return ctx.NewNumber(sum)
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "add", add.Value)

	assert.Equal(t, 10.0, evalNumber(t, ctx, "add(1, 2, 3, 4)"))
	assert.Equal(t, "add", evalString(t, ctx, "add.name"))
}

func TestHostFunctionReceivesThis(t *testing.T) {
	_, ctx := newTestContext(t)

	getX, err := ctx.NewFunction("getX", func(_ *jsc.Context, this *jsc.Object, _ []*jsc.Value) (*jsc.Value, error) {
		if this == nil {
			return nil, errors.New("no receiver")
		}
		return this.Property("x")
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "getX", getX.Value)

	assert.Equal(t, 5.0, evalNumber(t, ctx, "({x: 5, getX: getX}).getX()"))
}

func TestHostFunctionErrors(t *testing.T) {
	_, ctx := newTestContext(t)

	fail, err := ctx.NewFunction("fail", func(*jsc.Context, *jsc.Object, []*jsc.Value) (*jsc.Value, error) {
		return nil, fmt.Errorf("lookup failed: %w", errors.New("not found"))
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "fail", fail.Value)

	boom, err := ctx.NewFunction("boom", func(*jsc.Context, *jsc.Object, []*jsc.Value) (*jsc.Value, error) {
		panic("kaboom")
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "boom", boom.Value)

	rethrow, err := ctx.NewFunction("rethrow", func(ctx *jsc.Context, _ *jsc.Object, args []*jsc.Value) (*jsc.Value, error) {
		fn, err := args[0].AsObject()
		if err != nil {
			return nil, err
		}
		return fn.Call(nil)
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "rethrow", rethrow.Value)

	assert.Equal(t, "lookup failed: not found",
		evalString(t, ctx, "try { fail() } catch (e) { e.message }"))

	_, err = ctx.EvaluateScript("boom()")
	var exc *jsc.Exception
	require.ErrorAs(t, err, &exc)
	assert.Contains(t, exc.Message(), "go callback panicked: kaboom")

	assert.Equal(t, "inner",
		evalString(t, ctx, "try { rethrow(function () { throw 'inner' }) } catch (e) { e }"))

	// The context stays usable.
	assert.Equal(t, 2.0, evalNumber(t, ctx, "1 + 1"))
}

func TestHostFunctionFreesArgs(t *testing.T) {
	vm, ctx := newTestContext(t)

	var calls int
	sink, err := ctx.NewFunction("sink", func(_ *jsc.Context, this *jsc.Object, args []*jsc.Value) (*jsc.Value, error) {
		calls++
		if this != nil {
			this.Free()
		}
		for _, a := range args {
			a.Free()
		}
		return nil, nil
	})
	require.NoError(t, err)
	setGlobal(t, ctx, "sink", sink.Value)

	baseline := vm.Live(mockvm.KindProtection)
	eval(t, ctx, "for (let i = 0; i < 100; i++) sink(i, 'x', {})").Free()
	assert.Equal(t, 100, calls)
	assert.Equal(t, baseline, vm.Live(mockvm.KindProtection))
}
