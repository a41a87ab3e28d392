package xmask

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// ============================================================================
// all：不过滤
// ============================================================================

type allBuilder struct{}

func newAllBuilder(params map[string]any) (Builder, error) {
	var p struct{}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return allBuilder{}, nil
}

func (allBuilder) Requires() []string { return nil }

func (allBuilder) Build(context.Context, xsimid.Identity, Values) (xarray.Mask, error) {
	return xarray.All(), nil
}

// ============================================================================
// field-equals：单字段等于对象分量
// ============================================================================

type fieldEqualsParams struct {
	// Field 是用于比较的数据字段。
	Field string `koanf:"field"`
	// Component 是提供比较值的对象分量名。
	Component string `koanf:"component"`
}

type fieldEqualsBuilder struct {
	p fieldEqualsParams
}

func newFieldEqualsBuilder(params map[string]any) (Builder, error) {
	var p fieldEqualsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.Field == "" || p.Component == "" {
		return nil, fmt.Errorf("%w: field and component are required", ErrBadParams)
	}
	return &fieldEqualsBuilder{p: p}, nil
}

func (b *fieldEqualsBuilder) Requires() []string {
	return []string{b.p.Field}
}

func (b *fieldEqualsBuilder) Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error) {
	keep, err := matchRows(ctx, id, vals, map[string]string{b.p.Field: b.p.Component})
	if err != nil {
		return xarray.Mask{}, err
	}
	return xarray.FromBools(keep), nil
}

// ============================================================================
// row-match：多字段逻辑与
// ============================================================================

type rowMatchParams struct {
	// Match 把数据字段映射到对象分量名，所有条件同时成立才选中行。
	Match map[string]string `koanf:"match"`
}

type rowMatchBuilder struct {
	p rowMatchParams
}

func newRowMatchBuilder(params map[string]any) (Builder, error) {
	var p rowMatchParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := validateMatch(p.Match); err != nil {
		return nil, err
	}
	return &rowMatchBuilder{p: p}, nil
}

func (b *rowMatchBuilder) Requires() []string {
	return matchFields(b.p.Match)
}

func (b *rowMatchBuilder) Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error) {
	keep, err := matchRows(ctx, id, vals, b.p.Match)
	if err != nil {
		return xarray.Mask{}, err
	}
	return xarray.FromBools(keep), nil
}

// ============================================================================
// index-equals：行号等于对象分量
// ============================================================================

type indexEqualsParams struct {
	// CountField 是声明表行数的标量字段。
	CountField string `koanf:"count_field"`
	// Component 是提供行号的对象分量名。
	Component string `koanf:"component"`
	// Base 是行号基准，默认 1（第 1 行对应下标 0）。
	Base int64 `koanf:"base"`
}

type indexEqualsBuilder struct {
	p indexEqualsParams
}

func newIndexEqualsBuilder(params map[string]any) (Builder, error) {
	p := indexEqualsParams{Base: 1}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.CountField == "" || p.Component == "" {
		return nil, fmt.Errorf("%w: count_field and component are required", ErrBadParams)
	}
	return &indexEqualsBuilder{p: p}, nil
}

func (b *indexEqualsBuilder) Requires() []string {
	return []string{b.p.CountField}
}

// Build 生成长度为计数值的布尔行集，对象分量落在范围外时全为假。
func (b *indexEqualsBuilder) Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error) {
	want, err := componentValue(id, b.p.Component)
	if err != nil {
		return xarray.Mask{}, err
	}
	arr, err := vals.Field(ctx, b.p.CountField)
	if err != nil {
		return xarray.Mask{}, err
	}
	count, err := scalarInt(arr, b.p.CountField)
	if err != nil {
		return xarray.Mask{}, err
	}
	if count < 0 || count > math.MaxInt32 {
		return xarray.Mask{}, fmt.Errorf("%w: %q count %d out of range", ErrBadField, b.p.CountField, count)
	}

	keep := make([]bool, count)
	if idx := want - b.p.Base; idx >= 0 && idx < count {
		keep[idx] = true
	}
	return xarray.FromBools(keep), nil
}

// ============================================================================
// id-range：按偏移与计数取连续区间
// ============================================================================

type idRangeParams struct {
	// OffsetField 是区间起点表。
	OffsetField string `koanf:"offset_field"`
	// CountField 是区间长度表。
	CountField string `koanf:"count_field"`
	// Match 定位偏移与计数表中属于该对象的行。
	Match map[string]string `koanf:"match"`
}

type idRangeBuilder struct {
	p idRangeParams
}

func newIDRangeBuilder(params map[string]any) (Builder, error) {
	var p idRangeParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.OffsetField == "" || p.CountField == "" {
		return nil, fmt.Errorf("%w: offset_field and count_field are required", ErrBadParams)
	}
	if err := validateMatch(p.Match); err != nil {
		return nil, err
	}
	return &idRangeBuilder{p: p}, nil
}

func (b *idRangeBuilder) Requires() []string {
	fields := matchFields(b.p.Match)
	return append(fields, b.p.OffsetField, b.p.CountField)
}

func (b *idRangeBuilder) Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error) {
	keep, err := matchRows(ctx, id, vals, b.p.Match)
	if err != nil {
		return xarray.Mask{}, err
	}
	row := firstTrue(keep)
	if row < 0 {
		return xarray.Mask{}, fmt.Errorf("%w: %s", ErrNoMatch, id.CanonicalObj())
	}

	offset, err := int64At(ctx, vals, b.p.OffsetField, row)
	if err != nil {
		return xarray.Mask{}, err
	}
	count, err := int64At(ctx, vals, b.p.CountField, row)
	if err != nil {
		return xarray.Mask{}, err
	}
	if offset < 0 || count < 0 {
		return xarray.Mask{}, fmt.Errorf("%w: negative range [%d, +%d)", ErrBadField, offset, count)
	}

	m, err := xarray.Range(int(offset), int(offset+count))
	if err != nil {
		return xarray.Mask{}, fmt.Errorf("%w: %v", ErrBadField, err)
	}
	return m, nil
}

// int64At 取单列整型字段的第 row 行。
func int64At(ctx context.Context, vals Values, name string, row int) (int64, error) {
	arr, err := vals.Field(ctx, name)
	if err != nil {
		return 0, err
	}
	col, err := int64Column(arr, name)
	if err != nil {
		return 0, err
	}
	if row >= len(col) {
		return 0, fmt.Errorf("%w: %q has %d rows, want row %d", ErrBadField, name, len(col), row)
	}
	return col[row], nil
}

// ============================================================================
// aperture：到对象中心的球形孔径
// ============================================================================

type apertureParams struct {
	// CoordsField 是被筛选行的坐标字段。
	CoordsField string `koanf:"coords_field"`
	// CentreField 是对象中心所在的坐标表。
	CentreField string `koanf:"centre_field"`
	// CentreMatch 定位中心表中属于该对象的行。
	CentreMatch map[string]string `koanf:"centre_match"`
	// BoxField 是周期箱边长的标量字段，留空表示无周期回折。
	BoxField string `koanf:"box_field"`
	// Arg 是掩码参数中孔径半径的键名，默认 "aperture"。
	Arg string `koanf:"arg"`
}

type apertureBuilder struct {
	p apertureParams
}

func newApertureBuilder(params map[string]any) (Builder, error) {
	p := apertureParams{Arg: "aperture"}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.CoordsField == "" || p.CentreField == "" {
		return nil, fmt.Errorf("%w: coords_field and centre_field are required", ErrBadParams)
	}
	if err := validateMatch(p.CentreMatch); err != nil {
		return nil, err
	}
	if p.Arg == "" {
		return nil, fmt.Errorf("%w: empty arg name", ErrBadParams)
	}
	return &apertureBuilder{p: p}, nil
}

func (b *apertureBuilder) Requires() []string {
	fields := matchFields(b.p.CentreMatch)
	fields = append(fields, b.p.CentreField, b.p.CoordsField)
	if b.p.BoxField != "" {
		fields = append(fields, b.p.BoxField)
	}
	return fields
}

// Build 把坐标平移到对象中心系（必要时周期回折），
// 先用边长 2r 的立方体粗筛，再按 r² 精筛。
func (b *apertureBuilder) Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error) {
	radius, ok := id.Arg(b.p.Arg)
	if !ok {
		return xarray.Mask{}, fmt.Errorf("%w: %q (mask %s)", ErrMissingArg, b.p.Arg, id.MaskType)
	}
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return xarray.Mask{}, fmt.Errorf("%w: %q must be a positive radius, got %v", ErrBadParams, b.p.Arg, radius)
	}

	centre, err := b.centreRow(ctx, id, vals)
	if err != nil {
		return xarray.Mask{}, err
	}

	coords, err := vals.Field(ctx, b.p.CoordsField)
	if err != nil {
		return xarray.Mask{}, err
	}
	pts, err := coords.Float64s()
	if err != nil {
		return xarray.Mask{}, fmt.Errorf("%w: %q is %s, want float64", ErrBadField, b.p.CoordsField, coords.Kind())
	}
	if coords.Rows() == 0 {
		return xarray.FromBools(nil), nil
	}

	if err := coords.SubRow(centre); err != nil {
		return xarray.Mask{}, fmt.Errorf("%w: recentre %q: %v", ErrBadField, b.p.CoordsField, err)
	}
	if b.p.BoxField != "" {
		if err := b.wrap(ctx, vals, coords); err != nil {
			return xarray.Mask{}, err
		}
	}

	cols := coords.Size() / coords.Rows()
	r2 := radius * radius
	keep := make([]bool, coords.Rows())
	for i := range keep {
		row := pts[i*cols : (i+1)*cols]
		cube := true
		for _, v := range row {
			if v <= -radius || v >= radius {
				cube = false
				break
			}
		}
		if !cube {
			continue
		}
		var sum float64
		for _, v := range row {
			sum += v * v
		}
		keep[i] = sum < r2
	}
	return xarray.FromBools(keep), nil
}

// centreRow 在中心表中定位对象行并返回该行坐标。
func (b *apertureBuilder) centreRow(ctx context.Context, id xsimid.Identity, vals Values) (*xarray.Array, error) {
	keep, err := matchRows(ctx, id, vals, b.p.CentreMatch)
	if err != nil {
		return nil, err
	}
	row := firstTrue(keep)
	if row < 0 {
		return nil, fmt.Errorf("%w: %s in %q", ErrNoMatch, id.CanonicalObj(), b.p.CentreField)
	}

	table, err := vals.Field(ctx, b.p.CentreField)
	if err != nil {
		return nil, err
	}
	cells, err := table.Float64s()
	if err != nil {
		return nil, fmt.Errorf("%w: %q is %s, want float64", ErrBadField, b.p.CentreField, table.Kind())
	}
	rows := table.Rows()
	if rows == 0 || row >= rows {
		return nil, fmt.Errorf("%w: %q has %d rows, want row %d", ErrBadField, b.p.CentreField, rows, row)
	}
	cols := table.Size() / rows
	return xarray.NewFloat64s(cells[row*cols:(row+1)*cols], cols)
}

// wrap 按周期箱边长回折已重定中心的坐标。
func (b *apertureBuilder) wrap(ctx context.Context, vals Values, coords *xarray.Array) error {
	arr, err := vals.Field(ctx, b.p.BoxField)
	if err != nil {
		return err
	}
	length, err := arr.Float64Scalar()
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrBadField, b.p.BoxField, err)
	}
	if length <= 0 {
		return fmt.Errorf("%w: %q box length %v", ErrBadField, b.p.BoxField, length)
	}
	if err := coords.WrapPeriodic(length); err != nil {
		return fmt.Errorf("%w: wrap %q: %v", ErrBadField, b.p.CoordsField, err)
	}
	return nil
}

// ============================================================================
// 参数助手
// ============================================================================

// validateMatch 校验字段到分量的映射非空且键值均非空。
func validateMatch(match map[string]string) error {
	if len(match) == 0 {
		return fmt.Errorf("%w: match is required", ErrBadParams)
	}
	for field, component := range match {
		if field == "" || component == "" {
			return fmt.Errorf("%w: match has empty field or component", ErrBadParams)
		}
	}
	return nil
}

// matchFields 返回映射中的字段名，已排序。
func matchFields(match map[string]string) []string {
	fields := make([]string, 0, len(match))
	for f := range match {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
