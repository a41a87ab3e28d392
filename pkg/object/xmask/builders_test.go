package xmask

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// newGroupFixture 构造一个 4 行的群表：对象 (fof=1, sub=0) 对应行 0。
func newGroupFixture(t *testing.T) fixtureValues {
	t.Helper()
	return fixtureValues{
		"gns":   mustInt64s(t, []int64{1, 1, 2, 2}, 4),
		"sgns":  mustInt64s(t, []int64{0, 1, 0, 1}, 4),
		"offID": mustInt64s(t, []int64{0, 3, 5, 9}, 4),
		"nID":   mustInt64s(t, []int64{3, 2, 4, 1}, 4),
		"nfof":  mustInt64s(t, []int64{2}, 1),
		"cops":  mustFloat64s(t, []float64{1, 1, 1, 5, 5, 5, 2, 2, 2, 8, 8, 8}, 4, 3),
		"Lbox":  mustFloat64s(t, []float64{10}, 1),
	}
}

func TestAllBuilder(t *testing.T) {
	b, err := New("all", nil)
	require.NoError(t, err)
	assert.Empty(t, b.Requires())

	m, err := b.Build(context.Background(), testIdentity(), nil)
	require.NoError(t, err)
	assert.Equal(t, xarray.MaskAll, m.Kind())
}

func TestFieldEqualsBuilder(t *testing.T) {
	b, err := New("field-equals", map[string]any{"field": "gns", "component": "fof"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gns"}, b.Requires())

	m, err := b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, selectedRows(t, m, 4))
}

func TestFieldEqualsMissingComponent(t *testing.T) {
	b, err := New("field-equals", map[string]any{"field": "gns", "component": "halo"})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	assert.ErrorIs(t, err, ErrMissingComponent)
}

func TestFieldEqualsParamErrors(t *testing.T) {
	_, err := New("field-equals", map[string]any{"field": "gns"})
	assert.ErrorIs(t, err, ErrBadParams)

	_, err = New("field-equals", nil)
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestRowMatchBuilder(t *testing.T) {
	b, err := New("row-match", map[string]any{
		"match": map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gns", "sgns"}, b.Requires())

	m, err := b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, selectedRows(t, m, 4))
}

func TestRowMatchRowCountMismatch(t *testing.T) {
	vals := newGroupFixture(t)
	vals["sgns"] = mustInt64s(t, []int64{0, 1}, 2)

	b, err := New("row-match", map[string]any{
		"match": map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), testIdentity(), vals)
	assert.ErrorIs(t, err, ErrBadField)
}

func TestRowMatchEmptyMatch(t *testing.T) {
	_, err := New("row-match", map[string]any{"match": map[string]any{}})
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestIndexEqualsBuilder(t *testing.T) {
	b, err := New("index-equals", map[string]any{"count_field": "nfof", "component": "fof"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nfof"}, b.Requires())

	// fof=1，基准 1，应选中下标 0；表长由 nfof=2 决定。
	m, err := b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, selectedRows(t, m, 2))
}

func TestIndexEqualsOutOfRange(t *testing.T) {
	b, err := New("index-equals", map[string]any{"count_field": "nfof", "component": "fof"})
	require.NoError(t, err)

	id := testIdentity()
	id.ObjID["fof"] = 99

	m, err := b.Build(context.Background(), id, newGroupFixture(t))
	require.NoError(t, err)
	assert.Empty(t, selectedRows(t, m, 2))
}

func TestIndexEqualsCustomBase(t *testing.T) {
	b, err := New("index-equals", map[string]any{
		"count_field": "nfof", "component": "fof", "base": 0,
	})
	require.NoError(t, err)

	m, err := b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, selectedRows(t, m, 2))
}

func TestIDRangeBuilder(t *testing.T) {
	b, err := New("id-range", map[string]any{
		"offset_field": "offID",
		"count_field":  "nID",
		"match":        map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"gns", "sgns", "offID", "nID"}, b.Requires())

	// 对象行 0：offset=0，count=3。
	m, err := b.Build(context.Background(), testIdentity(), newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, xarray.MaskRange, m.Kind())
	assert.Equal(t, []int64{0, 1, 2}, selectedRows(t, m, 10))
}

func TestIDRangeSecondObject(t *testing.T) {
	b, err := New("id-range", map[string]any{
		"offset_field": "offID",
		"count_field":  "nID",
		"match":        map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)

	id := testIdentity()
	id.ObjID = xsimid.ObjID{"fof": 2, "sub": 0}

	m, err := b.Build(context.Background(), id, newGroupFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6, 7, 8}, selectedRows(t, m, 10))
}

func TestIDRangeNoMatch(t *testing.T) {
	b, err := New("id-range", map[string]any{
		"offset_field": "offID",
		"count_field":  "nID",
		"match":        map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)

	id := testIdentity()
	id.ObjID = xsimid.ObjID{"fof": 99, "sub": 99}

	_, err = b.Build(context.Background(), id, newGroupFixture(t))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestIDRangeNegativeCount(t *testing.T) {
	vals := newGroupFixture(t)
	vals["nID"] = mustInt64s(t, []int64{-1, 2, 4, 1}, 4)

	b, err := New("id-range", map[string]any{
		"offset_field": "offID",
		"count_field":  "nID",
		"match":        map[string]any{"gns": "fof", "sgns": "sub"},
	})
	require.NoError(t, err)

	_, err = b.Build(context.Background(), testIdentity(), vals)
	assert.ErrorIs(t, err, ErrBadField)
}

// newApertureFixture 在群表基础上加 5 行粒子坐标。
// 对象中心 (1,1,1)，半径 3，箱边长 10。
func newApertureFixture(t *testing.T) fixtureValues {
	t.Helper()
	vals := newGroupFixture(t)
	vals["xyz"] = mustFloat64s(t, []float64{
		1.5, 1, 1, // 相对 (0.5,0,0)，选中
		3.9, 1, 1, // 相对 (2.9,0,0)，立方体内且 r²=8.41<9，选中
		4.6, 1, 1, // 相对 (3.6,0,0)，立方体外
		3, 3, 1, // 相对 (2,2,0)，r²=8<9，选中
		-8.5, 1, 1, // 相对 (-9.5,0,0)，回折后 (0.5,0,0)，仅在周期箱下选中
	}, 5, 3)
	return vals
}

func apertureParamsMap(box string) map[string]any {
	p := map[string]any{
		"coords_field": "xyz",
		"centre_field": "cops",
		"centre_match": map[string]any{"gns": "fof", "sgns": "sub"},
	}
	if box != "" {
		p["box_field"] = box
	}
	return p
}

func TestApertureBuilder(t *testing.T) {
	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)
	assert.Equal(t, []string{"gns", "sgns", "cops", "xyz", "Lbox"}, b.Requires())

	m, err := b.Build(context.Background(), testIdentity(), newApertureFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 3, 4}, selectedRows(t, m, 5))
}

func TestApertureWithoutBoxWrap(t *testing.T) {
	b, err := New("aperture", apertureParamsMap(""))
	require.NoError(t, err)

	m, err := b.Build(context.Background(), testIdentity(), newApertureFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 3}, selectedRows(t, m, 5))
}

func TestApertureDoesNotMutateFixture(t *testing.T) {
	vals := newApertureFixture(t)
	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)

	_, err = b.Build(context.Background(), testIdentity(), vals)
	require.NoError(t, err)

	// 构建器只能改动自己持有的拷贝。
	xyz, err := vals["xyz"].Float64s()
	require.NoError(t, err)
	assert.Equal(t, 1.5, xyz[0])
}

func TestApertureMissingArg(t *testing.T) {
	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)

	id := testIdentity()
	id.MaskArgs = nil

	_, err = b.Build(context.Background(), id, newApertureFixture(t))
	assert.ErrorIs(t, err, ErrMissingArg)
}

func TestApertureNonPositiveRadius(t *testing.T) {
	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)

	id := testIdentity()
	id.MaskArgs = xsimid.MaskArgs{"aperture": -1}

	_, err = b.Build(context.Background(), id, newApertureFixture(t))
	assert.ErrorIs(t, err, ErrBadParams)
}

func TestApertureNoCentreMatch(t *testing.T) {
	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)

	id := testIdentity()
	id.ObjID = xsimid.ObjID{"fof": 99, "sub": 99}

	_, err = b.Build(context.Background(), id, newApertureFixture(t))
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestApertureCustomArgName(t *testing.T) {
	p := apertureParamsMap("Lbox")
	p["arg"] = "radius"
	b, err := New("aperture", p)
	require.NoError(t, err)

	id := testIdentity()
	id.MaskArgs = xsimid.MaskArgs{"radius": 3}

	m, err := b.Build(context.Background(), id, newApertureFixture(t))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 3, 4}, selectedRows(t, m, 5))
}

func TestApertureEmptyCoords(t *testing.T) {
	vals := newApertureFixture(t)
	vals["xyz"] = mustFloat64s(t, nil, 0, 3)

	b, err := New("aperture", apertureParamsMap("Lbox"))
	require.NoError(t, err)

	m, err := b.Build(context.Background(), testIdentity(), vals)
	require.NoError(t, err)
	assert.Empty(t, selectedRows(t, m, 0))
}
