package xsimobj

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omeyang/simkit/pkg/object/xmask"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/provider/xsimfiles"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// Field 返回对象的一个字段，按需经过完整交付管线。
// 返回值是门面持有的共享引用，调用方不得修改。
func (o *Object) Field(ctx context.Context, name string) (*xarray.Array, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ctx, span := xmetrics.Start(ctx, o.observer, xmetrics.SpanOptions{
		Component: "xsimobj",
		Operation: "field",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{{Key: "field", Value: name}},
	})
	arr, source, err := o.load(ctx, name)
	span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{{Key: "source", Value: source}}})
	if err != nil {
		return nil, err
	}
	return arr, nil
}

// load 执行字段交付管线，调用方必须已持有 o.mu。
// 质心与箱边长字段通过递归进入同一管线。
func (o *Object) load(ctx context.Context, name string) (*xarray.Array, string, error) {
	if o.closed {
		return nil, "", ErrClosed
	}
	if arr, ok := o.memory[name]; ok {
		return arr, "memory", nil
	}
	if o.loading[name] {
		return nil, "", fmt.Errorf("%w: %q", ErrFieldCycle, name)
	}
	o.loading[name] = true
	defer delete(o.loading, name)

	if arr, ok := o.session.Lookup(name); ok {
		o.memory[name] = arr
		return arr, "cache", nil
	}

	ext, ok := o.view[name]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", xsimfiles.ErrUnknownField, name)
	}

	raw, err := o.provider.Load(ctx, ext)
	if err != nil {
		return nil, "", err
	}

	mask, err := o.maskFor(ctx, ext.KeyType)
	if err != nil {
		return nil, "", err
	}
	arr, err := raw.Select(mask)
	if err != nil {
		return nil, "", fmt.Errorf("xsimobj: mask field %q (keytype %s): %w", name, ext.KeyType, err)
	}

	if centroid, ok := o.spec.Fields.Recenter[name]; ok {
		if err := o.recenter(ctx, name, arr, centroid); err != nil {
			return nil, "", err
		}
	}
	if boxField, ok := o.spec.Fields.BoxWrap[name]; ok {
		if err := o.boxWrap(ctx, name, arr, boxField); err != nil {
			return nil, "", err
		}
	}

	if err := o.session.Record(name, arr); err != nil {
		return nil, "", err
	}
	o.memory[name] = arr

	o.logger.DebugContext(ctx, "field loaded",
		slog.String("field", name),
		slog.String("keytype", ext.KeyType),
		slog.String("filetype", ext.FileType),
		slog.Int("rows", arr.Rows()),
	)
	return arr, "provider", nil
}

// recenter 把坐标字段平移到其质心系。质心字段走完整管线获取。
func (o *Object) recenter(ctx context.Context, name string, arr *xarray.Array, centroid string) error {
	centre, _, err := o.load(ctx, centroid)
	if err != nil {
		return fmt.Errorf("xsimobj: centroid %q for %q: %w", centroid, name, err)
	}
	if err := arr.SubRow(centre); err != nil {
		return fmt.Errorf("xsimobj: recenter %q by %q: %w", name, centroid, err)
	}
	return nil
}

// boxWrap 把重定中心后的坐标折回周期箱 [-L/2, L/2]。
func (o *Object) boxWrap(ctx context.Context, name string, arr *xarray.Array, boxField string) error {
	box, _, err := o.load(ctx, boxField)
	if err != nil {
		return fmt.Errorf("xsimobj: box length %q for %q: %w", boxField, name, err)
	}
	length, err := box.Float64Scalar()
	if err != nil {
		return fmt.Errorf("xsimobj: box length %q: %w", boxField, err)
	}
	if length <= 0 {
		return fmt.Errorf("xsimobj: box length %q is %v, want positive", boxField, length)
	}
	if err := arr.WrapPeriodic(length); err != nil {
		return fmt.Errorf("xsimobj: wrap %q: %w", name, err)
	}
	return nil
}

// maskFor 返回 keytype 生效的掩码，同一会话内按 keytype 记忆。
// 掩码的前置字段绕过缓存，直接按会话视图读原始表。
func (o *Object) maskFor(ctx context.Context, keytype string) (xarray.Mask, error) {
	if m, ok := o.masks[keytype]; ok {
		return m, nil
	}

	binding, err := o.spec.Masks.Resolve(keytype, o.id.MaskType)
	if err != nil {
		return xarray.Mask{}, err
	}
	builder, err := xmask.New(binding.Builder, binding.Params)
	if err != nil {
		return xarray.Mask{}, fmt.Errorf("xsimobj: mask for keytype %q: %w", keytype, err)
	}
	m, err := builder.Build(ctx, o.id, xmask.ValuesFunc(o.rawField))
	if err != nil {
		return xarray.Mask{}, fmt.Errorf("xsimobj: build mask for keytype %q: %w", keytype, err)
	}

	o.masks[keytype] = m
	o.logger.DebugContext(ctx, "mask built",
		slog.String("keytype", keytype),
		slog.String("builder", binding.Builder),
	)
	return m, nil
}

// rawField 为掩码构建器提供原始表：走会话视图寻址，不选行、不变换、不入缓存。
func (o *Object) rawField(ctx context.Context, name string) (*xarray.Array, error) {
	ext, ok := o.view[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (mask prerequisite)", xsimfiles.ErrUnknownField, name)
	}
	return o.provider.Load(ctx, ext)
}
