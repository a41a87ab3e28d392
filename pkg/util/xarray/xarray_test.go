package xarray

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape(t *testing.T) {
	tests := []struct {
		name    string
		data    []float64
		shape   []int
		wantErr error
	}{
		{name: "inferred 1d", data: []float64{1, 2, 3}, shape: nil},
		{name: "explicit 2d", data: []float64{1, 2, 3, 4, 5, 6}, shape: []int{2, 3}},
		{name: "empty", data: nil, shape: []int{0, 3}},
		{name: "size mismatch", data: []float64{1, 2, 3}, shape: []int{2, 2}, wantErr: ErrShapeMismatch},
		{name: "negative dim", data: []float64{1}, shape: []int{-1}, wantErr: ErrShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewFloat64s(tt.data, tt.shape...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.shape == nil {
				assert.Equal(t, []int{len(tt.data)}, a.Shape())
			} else {
				assert.Equal(t, tt.shape, a.Shape())
			}
		})
	}
}

func TestKindAccessors(t *testing.T) {
	f, err := NewFloat64s([]float64{1.5, 2.5})
	require.NoError(t, err)
	i, err := NewInt64s([]int64{7, 8, 9})
	require.NoError(t, err)
	b, err := NewBools([]bool{true, false})
	require.NoError(t, err)

	got, err := f.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, got)

	_, err = f.Int64s()
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = i.Bools()
	assert.ErrorIs(t, err, ErrKindMismatch)
	_, err = b.Float64s()
	assert.ErrorIs(t, err, ErrKindMismatch)

	assert.Equal(t, Float64, f.Kind())
	assert.Equal(t, Int64, i.Kind())
	assert.Equal(t, Bool, b.Kind())
}

func TestScalar(t *testing.T) {
	s, err := NewFloat64s([]float64{42})
	require.NoError(t, err)
	v, err := s.Float64Scalar()
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	long, err := NewFloat64s([]float64{1, 2})
	require.NoError(t, err)
	_, err = long.Float64Scalar()
	assert.ErrorIs(t, err, ErrNotScalar)

	n, err := NewInt64s([]int64{-3})
	require.NoError(t, err)
	iv, err := n.Int64Scalar()
	require.NoError(t, err)
	assert.Equal(t, int64(-3), iv)

	_, err = n.Float64Scalar()
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestCloneIsDeep(t *testing.T) {
	a, err := NewFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	c := a.Clone()
	require.True(t, a.Equal(c))

	cf, err := c.Float64s()
	require.NoError(t, err)
	cf[0] = 99
	assert.False(t, a.Equal(c))
	af, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, 1.0, af[0])
}

func TestEqual(t *testing.T) {
	a, _ := NewFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	sameData, _ := NewFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	flat, _ := NewFloat64s([]float64{1, 2, 3, 4}, 4)
	other, _ := NewFloat64s([]float64{1, 2, 3, 5}, 2, 2)
	ints, _ := NewInt64s([]int64{1, 2, 3, 4}, 2, 2)

	assert.True(t, a.Equal(sameData))
	assert.False(t, a.Equal(flat))
	assert.False(t, a.Equal(other))
	assert.False(t, a.Equal(ints))
}

func TestGobRoundTrip(t *testing.T) {
	a, err := NewFloat64s([]float64{1, 2, 3, 4, 5, 6}, 3, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(a))

	var back Array
	require.NoError(t, gob.NewDecoder(&buf).Decode(&back))
	assert.True(t, a.Equal(&back))
}

func TestGobDecodeRejectsGarbage(t *testing.T) {
	var a Array
	assert.Error(t, a.GobDecode([]byte("not gob at all")))
}

func TestSelectAll(t *testing.T) {
	a, err := NewFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	got, err := a.Select(All())
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestSelectBools(t *testing.T) {
	a, err := NewFloat64s([]float64{
		1, 2,
		3, 4,
		5, 6,
	}, 3, 2)
	require.NoError(t, err)

	got, err := a.Select(FromBools([]bool{true, false, true}))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, got.Shape())
	f, err := got.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 5, 6}, f)

	_, err = a.Select(FromBools([]bool{true}))
	assert.ErrorIs(t, err, ErrBadMask)
}

func TestSelectRange(t *testing.T) {
	a, err := NewInt64s([]int64{10, 20, 30, 40, 50})
	require.NoError(t, err)

	m, err := Range(1, 4)
	require.NoError(t, err)
	got, err := a.Select(m)
	require.NoError(t, err)
	i, err := got.Int64s()
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30, 40}, i)

	m, err = Range(2, 9)
	require.NoError(t, err)
	_, err = a.Select(m)
	assert.ErrorIs(t, err, ErrBadMask)

	_, err = Range(-1, 2)
	assert.ErrorIs(t, err, ErrBadRange)
	_, err = Range(3, 1)
	assert.ErrorIs(t, err, ErrBadRange)
}

func TestMaskCount(t *testing.T) {
	m := FromBools([]bool{true, true, false})
	n, err := m.Count(3)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = All().Count(7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestSubRow(t *testing.T) {
	coords, err := NewFloat64s([]float64{
		10, 20, 30,
		11, 21, 31,
	}, 2, 3)
	require.NoError(t, err)
	centre, err := NewFloat64s([]float64{10, 20, 30}, 1, 3)
	require.NoError(t, err)

	require.NoError(t, coords.SubRow(centre))
	f, err := coords.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1}, f)
}

func TestSubRowErrors(t *testing.T) {
	coords, _ := NewFloat64s([]float64{1, 2, 3, 4}, 2, 2)
	badCentre, _ := NewFloat64s([]float64{1, 2, 3})
	assert.ErrorIs(t, coords.SubRow(badCentre), ErrShapeMismatch)

	intCentre, _ := NewInt64s([]int64{1, 2})
	assert.ErrorIs(t, coords.SubRow(intCentre), ErrKindMismatch)

	cube, _ := NewFloat64s([]float64{1, 2, 3, 4}, 2, 1, 2)
	assert.ErrorIs(t, coords.SubRow(cube), ErrShapeMismatch)
}

func TestWrapPeriodic(t *testing.T) {
	a, err := NewFloat64s([]float64{60, -60, 10, -10, 50, -50})
	require.NoError(t, err)
	require.NoError(t, a.WrapPeriodic(100))
	f, err := a.Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{-40, 40, 10, -10, 50, -50}, f)

	ints, _ := NewInt64s([]int64{1})
	assert.ErrorIs(t, ints.WrapPeriodic(100), ErrKindMismatch)

	b, _ := NewFloat64s([]float64{1})
	assert.ErrorIs(t, b.WrapPeriodic(0), ErrShapeMismatch)
}
