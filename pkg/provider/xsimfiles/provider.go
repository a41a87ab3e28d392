package xsimfiles

import (
	"context"
	"fmt"
	"strings"

	"github.com/omeyang/simkit/pkg/util/xarray"
)

// Extractor 描述一个字段的抽取方式。
//
// FileType 决定数据寻址（读哪一类文件），KeyType 决定行的归属
// （上层按 keytype 选掩码）。两者独立：改写 FileType 不改变
// 字段语义，只改变读取位置。
type Extractor struct {
	// Field 是字段名，在一个数据集内唯一。
	Field string

	// KeyType 是行所属的键类别，如 "group"、"particle_g"。
	KeyType string

	// FileType 是数据文件类别，如 "group"、"particle"、"snapshot"。
	FileType string

	// Kind 是元素类型。
	Kind xarray.Kind

	// Columns 是每行的列数，标量字段为 1。
	Columns int
}

// Validate 校验抽取器声明是否完整。
func (e Extractor) Validate() error {
	if strings.TrimSpace(e.Field) == "" {
		return fmt.Errorf("%w: empty field name", ErrBadManifest)
	}
	if strings.TrimSpace(e.KeyType) == "" {
		return fmt.Errorf("%w: field %q has empty keytype", ErrBadManifest, e.Field)
	}
	if strings.TrimSpace(e.FileType) == "" {
		return fmt.Errorf("%w: field %q has empty filetype", ErrBadManifest, e.Field)
	}
	if e.Kind != xarray.Float64 && e.Kind != xarray.Int64 && e.Kind != xarray.Bool {
		return fmt.Errorf("%w: field %q has unknown kind", ErrBadManifest, e.Field)
	}
	if e.Columns < 1 {
		return fmt.Errorf("%w: field %q has %d columns", ErrBadManifest, e.Field, e.Columns)
	}
	return nil
}

// matches 检查数据表的类型与列数是否符合声明。
func (e Extractor) matches(table *xarray.Array) error {
	if table.Kind() != e.Kind {
		return fmt.Errorf("%w: field %q wants %s, table is %s",
			ErrExtractorMismatch, e.Field, e.Kind, table.Kind())
	}
	cols := 1
	if shape := table.Shape(); len(shape) == 2 {
		cols = shape[1]
	} else if len(shape) > 2 {
		return fmt.Errorf("%w: field %q table has %d dimensions",
			ErrExtractorMismatch, e.Field, len(shape))
	}
	if cols != e.Columns {
		return fmt.Errorf("%w: field %q wants %d columns, table has %d",
			ErrExtractorMismatch, e.Field, e.Columns, cols)
	}
	return nil
}

// Provider 是单个快照数据集的只读视图。
//
// Load 返回的数组归调用方所有，调用方可以就地修改；
// 实现不得在后续调用中复用同一底层存储。
//
// 同一 Provider 可在先后打开的多个对象会话间复用，摊薄原始数据读取；
// 跨会话的并发复用不属于接口契约，由具体实现自行声明。
type Provider interface {
	// Fields 返回数据集声明的全部字段名，已排序。
	Fields() []string

	// Extractor 返回字段的抽取器声明。
	Extractor(field string) (Extractor, bool)

	// Load 按抽取器读取完整原始表。
	// 抽取器可以是改写过的副本，寻址以传入值为准。
	Load(ctx context.Context, ext Extractor) (*xarray.Array, error)
}

// kindFromString 解析 manifest 中的元素类型名。
func kindFromString(s string) (xarray.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "float64", "f64":
		return xarray.Float64, nil
	case "int64", "i64":
		return xarray.Int64, nil
	case "bool", "b8":
		return xarray.Bool, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrBadManifest, s)
	}
}
