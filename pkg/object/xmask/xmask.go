package xmask

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// Values 提供构建掩码所需的前置字段。
// 返回的数组归构建器所有，构建器可就地修改。
type Values interface {
	Field(ctx context.Context, name string) (*xarray.Array, error)
}

// ValuesFunc 是 Values 的函数适配器。
type ValuesFunc func(ctx context.Context, name string) (*xarray.Array, error)

// Field 实现 Values 接口。
func (f ValuesFunc) Field(ctx context.Context, name string) (*xarray.Array, error) {
	return f(ctx, name)
}

// Builder 构建某一键类别下的行掩码。
type Builder interface {
	// Requires 返回构建掩码所需的前置字段名。
	Requires() []string

	// Build 基于对象标识与前置字段构建掩码。
	Build(ctx context.Context, id xsimid.Identity, vals Values) (xarray.Mask, error)
}

// Factory 由参数表创建构建器，参数不合法时返回 ErrBadParams。
type Factory func(params map[string]any) (Builder, error)

// ============================================================================
// 注册表
// ============================================================================

var (
	regMu    sync.RWMutex
	registry = map[string]Factory{
		"all":          newAllBuilder,
		"field-equals": newFieldEqualsBuilder,
		"row-match":    newRowMatchBuilder,
		"index-equals": newIndexEqualsBuilder,
		"id-range":     newIDRangeBuilder,
		"aperture":     newApertureBuilder,
	}
)

// Register 注册自定义构建器工厂。名字冲突返回 ErrDuplicateBuilder。
func Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return fmt.Errorf("%w: empty name or nil factory", ErrBadParams)
	}

	regMu.Lock()
	defer regMu.Unlock()

	if _, ok := registry[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateBuilder, name)
	}
	registry[name] = factory
	return nil
}

// New 按名字与参数表创建构建器。
func New(name string, params map[string]any) (Builder, error) {
	regMu.RLock()
	factory, ok := registry[name]
	regMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBuilder, name)
	}
	b, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("%w (builder %s)", err, name)
	}
	return b, nil
}

// Builders 返回全部已注册的构建器名字，已排序。
func Builders() []string {
	regMu.RLock()
	defer regMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeParams 把参数表解码到构建器的参数结构。
// 未知键视为配置笔误，直接报错。
func decodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "koanf",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	if params == nil {
		params = map[string]any{}
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("%w: %v", ErrBadParams, err)
	}
	return nil
}

// ============================================================================
// 共享取值助手
// ============================================================================

// componentValue 取对象标识的命名分量。
func componentValue(id xsimid.Identity, name string) (int64, error) {
	v, ok := id.Component(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q (object %s)", ErrMissingComponent, name, id.CanonicalObj())
	}
	return v, nil
}

// int64Column 校验前置字段是单列整型表并返回其值。
func int64Column(arr *xarray.Array, name string) ([]int64, error) {
	if arr.Kind() != xarray.Int64 {
		return nil, fmt.Errorf("%w: %q is %s, want int64", ErrBadField, name, arr.Kind())
	}
	if arr.Rows() != arr.Size() {
		return nil, fmt.Errorf("%w: %q is not a single column", ErrBadField, name)
	}
	return arr.Int64s()
}

// scalarInt 取标量计数值，容忍整数值的浮点存储。
func scalarInt(arr *xarray.Array, name string) (int64, error) {
	switch arr.Kind() {
	case xarray.Int64:
		v, err := arr.Int64Scalar()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrBadField, name, err)
		}
		return v, nil
	case xarray.Float64:
		v, err := arr.Float64Scalar()
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrBadField, name, err)
		}
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%w: %q is not an integer count", ErrBadField, name)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: %q is %s, want a count", ErrBadField, name, arr.Kind())
	}
}

// matchRows 计算多字段同时等于各自对象分量的布尔行集。
// 字段按名字排序逐个求值，保证报错顺序稳定。
func matchRows(ctx context.Context, id xsimid.Identity, vals Values, match map[string]string) ([]bool, error) {
	fields := make([]string, 0, len(match))
	for f := range match {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var keep []bool
	for _, field := range fields {
		want, err := componentValue(id, match[field])
		if err != nil {
			return nil, err
		}
		arr, err := vals.Field(ctx, field)
		if err != nil {
			return nil, err
		}
		col, err := int64Column(arr, field)
		if err != nil {
			return nil, err
		}
		if keep == nil {
			keep = make([]bool, len(col))
			for i, v := range col {
				keep[i] = v == want
			}
			continue
		}
		if len(col) != len(keep) {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrBadField, field, len(col), len(keep))
		}
		for i, v := range col {
			keep[i] = keep[i] && v == want
		}
	}
	return keep, nil
}

// firstTrue 返回首个为真的下标，不存在时返回 -1。
func firstTrue(keep []bool) int {
	for i, v := range keep {
		if v {
			return i
		}
	}
	return -1
}
