package xsimfiles

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/omeyang/simkit/pkg/util/xarray"
)

// MemProvider 是内存数据集，主要用于测试与小规模场景。
//
// 表按 (filetype, field) 注册，同一字段可以在多个文件类别下
// 各注册一份，以便模拟抽取器改写后的寻址变化。
type MemProvider struct {
	mu     sync.RWMutex
	exts   map[string]Extractor
	tables map[string]map[string]*xarray.Array
	loads  map[string]int
}

// NewMem 创建空的内存数据集。
func NewMem() *MemProvider {
	return &MemProvider{
		exts:   make(map[string]Extractor),
		tables: make(map[string]map[string]*xarray.Array),
		loads:  make(map[string]int),
	}
}

// Register 注册一个字段的数据表。
//
// 首次注册确立字段的抽取器声明；再次以不同 FileType 注册同名字段
// 时，除 FileType 外的声明必须一致。重复注册同一 (filetype, field)
// 返回 ErrDuplicateField。
func (p *MemProvider) Register(ext Extractor, table *xarray.Array) error {
	if err := ext.Validate(); err != nil {
		return err
	}
	if table == nil {
		return fmt.Errorf("%w: field %q has nil table", ErrExtractorMismatch, ext.Field)
	}
	if err := ext.matches(table); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.exts[ext.Field]; ok {
		if prev.KeyType != ext.KeyType || prev.Kind != ext.Kind || prev.Columns != ext.Columns {
			return fmt.Errorf("%w: field %q registered with conflicting declarations",
				ErrDuplicateField, ext.Field)
		}
	} else {
		p.exts[ext.Field] = ext
	}

	byField, ok := p.tables[ext.FileType]
	if !ok {
		byField = make(map[string]*xarray.Array)
		p.tables[ext.FileType] = byField
	}
	if _, ok := byField[ext.Field]; ok {
		return fmt.Errorf("%w: %s/%s", ErrDuplicateField, ext.FileType, ext.Field)
	}
	byField[ext.Field] = table
	return nil
}

// Fields 返回全部已注册字段名，已排序。
func (p *MemProvider) Fields() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	fields := make([]string, 0, len(p.exts))
	for f := range p.exts {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Extractor 返回字段首次注册时的抽取器声明。
func (p *MemProvider) Extractor(field string) (Extractor, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ext, ok := p.exts[field]
	return ext, ok
}

// Load 按抽取器返回数据表的深拷贝。
func (p *MemProvider) Load(ctx context.Context, ext Extractor) (*xarray.Array, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	table, ok := p.tables[ext.FileType][ext.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownField, ext.FileType, ext.Field)
	}
	p.loads[ext.FileType+"/"+ext.Field]++
	return table.Clone(), nil
}

// LoadCount 返回某个 (filetype, field) 位置被 Load 的次数，用于测试。
func (p *MemProvider) LoadCount(fileType, field string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.loads[fileType+"/"+field]
}
