package xsimobj

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/omeyang/simkit/pkg/config/xobjconf"
	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/provider/xsimfiles"
	"github.com/omeyang/simkit/pkg/storage/xobjcache"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// Object 是单个模拟对象的字段门面。
// 通过 Open 创建；Close 写回缓存并释放锁。
type Object struct {
	id       xsimid.Identity
	spec     xobjconf.Spec
	provider xsimfiles.Provider
	session  xobjcache.Session
	view     map[string]xsimfiles.Extractor
	fields   []string
	logger   *slog.Logger
	observer xmetrics.Observer
	openedAt time.Time

	mu      sync.Mutex
	memory  map[string]*xarray.Array
	masks   map[string]xarray.Mask
	loading map[string]bool
	closed  bool
}

// Open 打开对象的字段门面并对其缓存文件加锁。
//
// 缓存锁被占用时返回 xobjcache.ErrCacheLocked，不等待；
// 配置的 cache 节决定缓存目录与开关，WithManager 可整体覆盖。
func Open(ctx context.Context, cfg xobjconf.Config, provider xsimfiles.Provider, id xsimid.Identity, opts ...Option) (*Object, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	if cfg == nil {
		return nil, ErrNilConfig
	}
	if provider == nil {
		return nil, ErrNilProvider
	}
	if err := id.Validate(); err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	spec := cfg.Spec()
	view, fields := buildView(spec, provider, id)

	manager := options.Manager
	if manager == nil {
		var err error
		manager, err = newManager(spec.Cache, logger, options.Observer)
		if err != nil {
			return nil, err
		}
	}

	ctx, span := xmetrics.Start(ctx, options.Observer, xmetrics.SpanOptions{
		Component: "xsimobj",
		Operation: "open",
		Kind:      xmetrics.KindInternal,
		Attrs:     []xmetrics.Attr{{Key: "snap", Value: string(id.SnapID)}},
	})

	session, err := manager.Open(ctx, id)
	if err != nil {
		span.End(xmetrics.Result{Err: err})
		return nil, err
	}
	span.End(xmetrics.Result{})

	logger.DebugContext(ctx, "object opened",
		slog.String("identity", id.Canonical()),
		slog.Int("fields", len(fields)),
	)

	return &Object{
		id:       id,
		spec:     spec,
		provider: provider,
		session:  session,
		view:     view,
		fields:   fields,
		logger:   logger,
		observer: options.Observer,
		openedAt: time.Now(),
		memory:   make(map[string]*xarray.Array),
		masks:    make(map[string]xarray.Mask),
		loading:  make(map[string]bool),
	}, nil
}

// With 在回调期间持有对象，返回前写回缓存并释放锁。
// 回调错误与关闭错误合并返回；回调 panic 时先释放锁再继续传播。
func With(ctx context.Context, cfg xobjconf.Config, provider xsimfiles.Provider, id xsimid.Identity, fn func(*Object) error, opts ...Option) (err error) {
	if fn == nil {
		return ErrNilFn
	}
	obj, err := Open(ctx, cfg, provider, id, opts...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, obj.Close())
	}()
	return fn(obj)
}

// Identity 返回对象身份。
func (o *Object) Identity() xsimid.Identity {
	return o.id
}

// Fields 返回可加载的字段名，已排序。
func (o *Object) Fields() []string {
	fields := make([]string, len(o.fields))
	copy(fields, o.fields)
	return fields
}

// Close 写回缓存并释放锁。只有首次调用生效，再次调用返回 ErrClosed。
func (o *Object) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	o.closed = true
	o.memory = nil
	o.masks = nil
	o.loading = nil
	o.mu.Unlock()

	_, span := xmetrics.Start(context.Background(), o.observer, xmetrics.SpanOptions{
		Component: "xsimobj",
		Operation: "close",
		Kind:      xmetrics.KindInternal,
	})
	err := o.session.Close()
	span.End(xmetrics.Result{Err: err})

	o.logger.Debug("object closed",
		slog.String("identity", o.id.Canonical()),
		slog.Duration("held", time.Since(o.openedAt)),
	)
	return err
}

// newManager 按配置的 cache 节构造缓存管理器。
func newManager(cache xobjconf.CacheSpec, logger *slog.Logger, obs xmetrics.Observer) (xobjcache.Manager, error) {
	opts := []xobjcache.Option{
		xobjcache.WithDisabled(cache.Disabled),
		xobjcache.WithLogger(logger),
		xobjcache.WithObserver(obs),
	}
	if cache.Prefix != "" {
		opts = append(opts, xobjcache.WithPrefix(cache.Prefix))
	}
	if cache.NameTemplate != "" {
		opts = append(opts, xobjcache.WithNameTemplate(cache.NameTemplate))
	}
	return xobjcache.New(opts...)
}

// buildView 应用抽取器改写规则，生成本会话的字段寻址视图。
// 改写规则按声明顺序依次生效，后面的规则可以覆盖前面的。
func buildView(spec xobjconf.Spec, provider xsimfiles.Provider, id xsimid.Identity) (map[string]xsimfiles.Extractor, []string) {
	names := provider.Fields()
	view := make(map[string]xsimfiles.Extractor, len(names))
	fields := make([]string, 0, len(names))
	for _, name := range names {
		ext, ok := provider.Extractor(name)
		if !ok {
			continue
		}
		for _, edit := range spec.Extractors.Edits {
			if edit.When.Matches(ext.KeyType, id.MaskType) && edit.Set.FileType != "" {
				ext.FileType = edit.Set.FileType
			}
		}
		view[name] = ext
		fields = append(fields, name)
	}
	sort.Strings(fields)
	return view, fields
}
