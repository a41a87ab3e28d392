package xmask

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// fixtureValues 是测试用的字段来源，每次取值返回深拷贝。
type fixtureValues map[string]*xarray.Array

func (f fixtureValues) Field(_ context.Context, name string) (*xarray.Array, error) {
	arr, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("fixture has no field %q", name)
	}
	return arr.Clone(), nil
}

func mustInt64s(t *testing.T, vals []int64, shape ...int) *xarray.Array {
	t.Helper()
	arr, err := xarray.NewInt64s(vals, shape...)
	require.NoError(t, err)
	return arr
}

func mustFloat64s(t *testing.T, vals []float64, shape ...int) *xarray.Array {
	t.Helper()
	arr, err := xarray.NewFloat64s(vals, shape...)
	require.NoError(t, err)
	return arr
}

// selectedRows 把掩码应用到 [0..rows) 的行号表，返回选中的行号。
func selectedRows(t *testing.T, m xarray.Mask, rows int) []int64 {
	t.Helper()
	data := make([]int64, rows)
	for i := range data {
		data[i] = int64(i)
	}
	arr := mustInt64s(t, data, rows)
	out, err := arr.Select(m)
	require.NoError(t, err)
	vals, err := out.Int64s()
	require.NoError(t, err)
	return vals
}

func testIdentity() xsimid.Identity {
	return xsimid.Identity{
		SnapID:   "snap127",
		ObjID:    xsimid.ObjID{"fof": 1, "sub": 0},
		MaskType: "aperture",
		MaskArgs: xsimid.MaskArgs{"aperture": 3},
	}
}

func TestNewUnknownBuilder(t *testing.T) {
	_, err := New("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownBuilder)
}

func TestRegister(t *testing.T) {
	custom := func(map[string]any) (Builder, error) { return allBuilder{}, nil }

	require.NoError(t, Register("custom-for-test", custom))
	b, err := New("custom-for-test", nil)
	require.NoError(t, err)
	assert.NotNil(t, b)

	assert.ErrorIs(t, Register("custom-for-test", custom), ErrDuplicateBuilder)
	assert.ErrorIs(t, Register("all", custom), ErrDuplicateBuilder)
	assert.ErrorIs(t, Register("", custom), ErrBadParams)
	assert.ErrorIs(t, Register("x", nil), ErrBadParams)
}

func TestBuilders(t *testing.T) {
	names := Builders()
	for _, want := range []string{"all", "aperture", "field-equals", "id-range", "index-equals", "row-match"} {
		assert.Contains(t, names, want)
	}
	assert.IsNonDecreasing(t, names)
}

func TestDecodeParamsRejectsUnknownKeys(t *testing.T) {
	_, err := New("field-equals", map[string]any{
		"field":     "gns",
		"component": "fof",
		"feild":     "typo",
	})
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestScalarInt(t *testing.T) {
	i, err := scalarInt(mustInt64s(t, []int64{7}, 1), "n")
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	i, err = scalarInt(mustFloat64s(t, []float64{7}, 1), "n")
	require.NoError(t, err)
	assert.Equal(t, int64(7), i)

	_, err = scalarInt(mustFloat64s(t, []float64{7.5}, 1), "n")
	assert.ErrorIs(t, err, ErrBadField)

	_, err = scalarInt(mustInt64s(t, []int64{1, 2}, 2), "n")
	assert.ErrorIs(t, err, ErrBadField)
}

func TestInt64Column(t *testing.T) {
	_, err := int64Column(mustFloat64s(t, []float64{1}, 1), "f")
	assert.ErrorIs(t, err, ErrBadField)

	_, err = int64Column(mustInt64s(t, []int64{1, 2, 3, 4}, 2, 2), "f")
	assert.ErrorIs(t, err, ErrBadField)

	col, err := int64Column(mustInt64s(t, []int64{1, 2}, 2), "f")
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, col)
}
