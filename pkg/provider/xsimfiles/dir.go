package xsimfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// dirProvider 是目录数据集中单个快照的只读视图。
type dirProvider struct {
	dir   string
	snap  string
	entry manifestEntry
	cat   *catalog
}

// Fields 实现 Provider 接口。
func (p *dirProvider) Fields() []string {
	fields := make([]string, len(p.entry.fields))
	copy(fields, p.entry.fields)
	return fields
}

// Extractor 实现 Provider 接口。
func (p *dirProvider) Extractor(field string) (Extractor, bool) {
	ext, ok := p.entry.exts[field]
	return ext, ok
}

// Load 实现 Provider 接口。
//
// 列缓存按文件路径键控；缓存命中返回深拷贝，调用方可就地修改。
// manifest 声明了字段但数据文件缺失时返回 ErrCorruptData。
func (p *dirProvider) Load(ctx context.Context, ext Extractor) (*xarray.Array, error) {
	if p.cat.closed.Load() {
		return nil, ErrCatalogClosed
	}
	if _, ok := p.entry.exts[ext.Field]; !ok {
		return nil, fmt.Errorf("%w: %q (snap %s)", ErrUnknownField, ext.Field, p.snap)
	}
	if err := ext.Validate(); err != nil {
		return nil, err
	}
	if !isPathElement(ext.FileType) {
		return nil, fmt.Errorf("%w: filetype %q has unsafe path element",
			ErrBadManifest, ext.FileType)
	}

	path := columnPath(p.dir, ext)
	ctx, span := xmetrics.Start(ctx, p.cat.opts.Observer, xmetrics.SpanOptions{
		Component: "xsimfiles",
		Operation: "load",
		Kind:      xmetrics.KindProvider,
		Attrs: []xmetrics.Attr{
			{Key: "field", Value: ext.Field},
			{Key: "filetype", Value: ext.FileType},
		},
	})

	if cached, ok := p.blockGet(path); ok {
		span.End(xmetrics.Result{Attrs: []xmetrics.Attr{{Key: "hit", Value: true}}})
		return cached, nil
	}

	arr, err := p.readBlock(ctx, path, ext)
	if err != nil {
		span.End(xmetrics.Result{Err: err})
		return nil, err
	}
	span.End(xmetrics.Result{Attrs: []xmetrics.Attr{{Key: "hit", Value: false}}})
	return arr, nil
}

// blockGet 查询列缓存，命中时返回深拷贝。
func (p *dirProvider) blockGet(path string) (*xarray.Array, bool) {
	if p.cat.blocks == nil {
		return nil, false
	}
	arr, ok := p.cat.blocks.Get(path)
	if !ok || arr == nil {
		return nil, false
	}
	return arr.Clone(), true
}

// readBlock 读取并解码列文件，成功后回填缓存。
func (p *dirProvider) readBlock(ctx context.Context, path string, ext Extractor) (*xarray.Array, error) {
	data, err := p.cat.readFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: field %q declared but %s missing",
				ErrCorruptData, ext.Field, path)
		}
		return nil, fmt.Errorf("xsimfiles: read column %s: %w", path, err)
	}

	arr, err := DecodeColumn(data, ext)
	if err != nil {
		return nil, err
	}

	p.cat.logger.DebugContext(ctx, "column loaded",
		slog.String("snap", p.snap),
		slog.String("field", ext.Field),
		slog.String("filetype", ext.FileType),
		slog.Int("rows", arr.Rows()),
		slog.Int("bytes", len(data)),
	)

	if p.cat.blocks != nil {
		// 缓存持有独立副本，返回值归调用方所有。
		p.cat.blocks.SetWithTTL(path, arr, blockCost(arr), p.cat.opts.ManifestTTL)
		return arr.Clone(), nil
	}
	return arr, nil
}

// blockCost 估算数组在缓存中的字节成本。
func blockCost(arr *xarray.Array) int64 {
	return int64(arr.Size()*elemSize(arr.Kind())) + 48
}
