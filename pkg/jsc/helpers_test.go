package jsc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/javascriptcore-go/jsc/pkg/jsc"
	"github.com/javascriptcore-go/jsc/pkg/jsc/logging"
	"github.com/javascriptcore-go/jsc/pkg/jsc/mockvm"
)

func mockConfig(vm *mockvm.VM) jsc.Config {
	return jsc.Config{Native: vm, Logger: logging.Nop()}
}

// newTestContext returns a context on a fresh mock engine. The context is
// released at cleanup.
func newTestContext(t *testing.T) (*mockvm.VM, *jsc.Context) {
	t.Helper()
	vm := mockvm.New()
	ctx, err := jsc.NewContext(mockConfig(vm))
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return vm, ctx
}

func eval(t *testing.T, ctx *jsc.Context, src string) *jsc.Value {
	t.Helper()
	v, err := ctx.EvaluateScript(src)
	require.NoError(t, err)
	return v
}

func evalNumber(t *testing.T, ctx *jsc.Context, src string) float64 {
	t.Helper()
	v := eval(t, ctx, src)
	defer v.Free()
	n, err := v.ToNumber()
	require.NoError(t, err)
	return n
}

func evalString(t *testing.T, ctx *jsc.Context, src string) string {
	t.Helper()
	v := eval(t, ctx, src)
	defer v.Free()
	s, err := v.ToString()
	require.NoError(t, err)
	return s
}

func setGlobal(t *testing.T, ctx *jsc.Context, name string, v *jsc.Value) {
	t.Helper()
	global, err := ctx.GlobalObject()
	require.NoError(t, err)
	defer global.Free()
	require.NoError(t, global.SetProperty(name, v))
}
