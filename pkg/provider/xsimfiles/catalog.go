package xsimfiles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	retry "github.com/avast/retry-go/v5"
	"github.com/dgraph-io/ristretto/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// manifestFileName 是快照目录下的抽取器声明文件名。
const manifestFileName = "manifest.yaml"

// Catalog 管理数据集根目录，按快照标识发放 Provider。
//
// 解析后的 manifest 按 TTL 缓存，列数据按字节成本缓存；
// Close 释放缓存资源，已发放的 Provider 随之失效。
type Catalog interface {
	// Provider 返回指定快照的数据集视图。
	// 快照不存在时返回 ErrUnknownSnap。
	Provider(ctx context.Context, snap xsimid.SnapID) (Provider, error)

	// Root 返回数据集根目录。
	Root() string

	// Close 释放缓存资源。重复关闭返回 ErrCatalogClosed。
	Close() error
}

// manifestEntry 是缓存的 manifest 解析结果。
type manifestEntry struct {
	dataset  string
	exts     map[string]Extractor
	fields   []string
	loadedAt time.Time
}

// catalog 实现 Catalog 接口。
type catalog struct {
	root      string
	opts      *CatalogOptions
	logger    *slog.Logger
	manifests *lru.Cache[string, manifestEntry]
	blocks    *ristretto.Cache[string, *xarray.Array]
	closed    atomic.Bool
}

// NewCatalog 创建数据集目录。根目录必须已存在。
func NewCatalog(root string, opts ...CatalogOption) (Catalog, error) {
	options := defaultCatalogOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidRoot)
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	manifests, err := lru.New[string, manifestEntry](options.ManifestCap)
	if err != nil {
		return nil, fmt.Errorf("xsimfiles: create manifest cache: %w", err)
	}

	var blocks *ristretto.Cache[string, *xarray.Array]
	if options.BlockCacheBytes > 0 {
		counters := options.BlockCacheBytes / (1 << 20) * 10
		if counters < 1<<10 {
			counters = 1 << 10
		}
		blocks, err = ristretto.NewCache(&ristretto.Config[string, *xarray.Array]{
			NumCounters: counters,
			MaxCost:     options.BlockCacheBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("xsimfiles: create block cache: %w", err)
		}
	}

	return &catalog{
		root:      filepath.Clean(root),
		opts:      options,
		logger:    logger,
		manifests: manifests,
		blocks:    blocks,
	}, nil
}

// Provider 实现 Catalog 接口。
func (c *catalog) Provider(ctx context.Context, snap xsimid.SnapID) (Provider, error) {
	if c.closed.Load() {
		return nil, ErrCatalogClosed
	}
	key := strings.TrimSpace(string(snap))
	if key == "" || !isPathElement(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSnap, snap)
	}

	ctx, span := xmetrics.Start(ctx, c.opts.Observer, xmetrics.SpanOptions{
		Component: "xsimfiles",
		Operation: "open_snapshot",
		Kind:      xmetrics.KindProvider,
		Attrs:     []xmetrics.Attr{{Key: "snap", Value: key}},
	})

	entry, err := c.manifestFor(ctx, key)
	if err != nil {
		span.End(xmetrics.Result{Err: err})
		return nil, err
	}
	span.End(xmetrics.Result{})

	return &dirProvider{
		dir:   filepath.Join(c.root, key),
		snap:  key,
		entry: entry,
		cat:   c,
	}, nil
}

// manifestFor 返回快照的 manifest，优先走缓存。
func (c *catalog) manifestFor(ctx context.Context, snap string) (manifestEntry, error) {
	if entry, ok := c.manifests.Get(snap); ok {
		if c.opts.ManifestTTL <= 0 || time.Since(entry.loadedAt) < c.opts.ManifestTTL {
			return entry, nil
		}
		c.manifests.Remove(snap)
	}

	path := filepath.Join(c.root, snap, manifestFileName)
	data, err := c.readFile(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifestEntry{}, fmt.Errorf("%w: %q", ErrUnknownSnap, snap)
		}
		return manifestEntry{}, fmt.Errorf("xsimfiles: read manifest: %w", err)
	}

	entry, err := parseManifest(data)
	if err != nil {
		return manifestEntry{}, fmt.Errorf("%w (snap %s)", err, snap)
	}
	c.manifests.Add(snap, entry)

	c.logger.DebugContext(ctx, "manifest loaded",
		slog.String("snap", snap),
		slog.String("dataset", entry.dataset),
		slog.Int("extractors", len(entry.exts)),
	)
	return entry, nil
}

// Root 实现 Catalog 接口。
func (c *catalog) Root() string {
	return c.root
}

// Close 实现 Catalog 接口。
func (c *catalog) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrCatalogClosed
	}
	c.manifests.Purge()
	if c.blocks != nil {
		c.blocks.Close()
	}
	return nil
}

// readFile 读取文件内容，瞬时失败按指数退避重试。
// 文件不存在不重试，上下文取消立即中断。
func (c *catalog) readFile(ctx context.Context, path string) ([]byte, error) {
	return retry.NewWithData[[]byte](
		retry.Context(ctx),
		retry.Attempts(c.opts.ReadAttempts),
		retry.Delay(c.opts.ReadDelay),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, fs.ErrNotExist)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WarnContext(ctx, "read retry",
				slog.String("path", path),
				slog.Uint64("attempt", uint64(n)+1),
				slog.Any("error", err),
			)
		}),
	).Do(func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

// ============================================================================
// manifest 解析
// ============================================================================

// manifestDoc 是 manifest.yaml 的反序列化结构。
type manifestDoc struct {
	Dataset    string          `koanf:"dataset"`
	Extractors []extractorSpec `koanf:"extractors"`
}

// extractorSpec 是 manifest 中单个抽取器的声明。
type extractorSpec struct {
	Field    string `koanf:"field"`
	KeyType  string `koanf:"keytype"`
	FileType string `koanf:"filetype"`
	Kind     string `koanf:"kind"`
	Columns  int    `koanf:"columns"`
}

// parseManifest 解析并校验 manifest 内容。
func parseManifest(data []byte) (manifestEntry, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return manifestEntry{}, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	var doc manifestDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return manifestEntry{}, fmt.Errorf("%w: %v", ErrBadManifest, err)
	}
	if len(doc.Extractors) == 0 {
		return manifestEntry{}, fmt.Errorf("%w: no extractors declared", ErrBadManifest)
	}

	exts := make(map[string]Extractor, len(doc.Extractors))
	fields := make([]string, 0, len(doc.Extractors))
	for _, spec := range doc.Extractors {
		kind, err := kindFromString(spec.Kind)
		if err != nil {
			return manifestEntry{}, err
		}
		columns := spec.Columns
		if columns == 0 {
			columns = 1
		}
		ext := Extractor{
			Field:    strings.TrimSpace(spec.Field),
			KeyType:  strings.TrimSpace(spec.KeyType),
			FileType: strings.TrimSpace(spec.FileType),
			Kind:     kind,
			Columns:  columns,
		}
		if err := ext.Validate(); err != nil {
			return manifestEntry{}, err
		}
		if !isPathElement(ext.Field) || !isPathElement(ext.FileType) {
			return manifestEntry{}, fmt.Errorf("%w: field %q has unsafe path element",
				ErrBadManifest, ext.Field)
		}
		if _, ok := exts[ext.Field]; ok {
			return manifestEntry{}, fmt.Errorf("%w: duplicate field %q", ErrBadManifest, ext.Field)
		}
		exts[ext.Field] = ext
		fields = append(fields, ext.Field)
	}
	sort.Strings(fields)

	return manifestEntry{
		dataset:  strings.TrimSpace(doc.Dataset),
		exts:     exts,
		fields:   fields,
		loadedAt: time.Now(),
	}, nil
}

// isPathElement 检查名字是否可以安全用作单级路径元素。
func isPathElement(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}
