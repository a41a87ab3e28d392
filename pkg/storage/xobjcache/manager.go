package xobjcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

type manager struct {
	prefix   string
	template string
	disabled bool
	fileMode fs.FileMode
	logger   *slog.Logger
	observer xmetrics.Observer
}

func (m *manager) Prefix() string {
	return m.prefix
}

func (m *manager) Path(id xsimid.Identity) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	name, err := cachefile.RenderName(m.template, id)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.prefix, name), nil
}

func (m *manager) Open(ctx context.Context, id xsimid.Identity) (Session, error) {
	path, err := m.Path(id)
	if err != nil {
		return nil, err
	}

	if m.disabled {
		m.logger.DebugContext(ctx, "cache disabled, opening no-op session", "identity", id.String())
		return &noopSession{id: id}, nil
	}

	ctx, span := xmetrics.Start(ctx, m.observer, xmetrics.SpanOptions{
		Component: "xobjcache",
		Operation: "open",
		Kind:      xmetrics.KindStorage,
	})

	sess, err := m.open(ctx, id, path)
	span.End(xmetrics.Result{Err: err})
	return sess, err
}

func (m *manager) open(ctx context.Context, id xsimid.Identity, path string) (Session, error) {
	if err := os.MkdirAll(m.prefix, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrefix, err)
	}

	lockPath := cachefile.LockPath(path)
	if err := cachefile.AcquireLock(lockPath, cachefile.NewLockInfo(), m.fileMode); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, m.lockedError(ctx, lockPath)
		}
		return nil, err
	}

	img, corrupt, err := readSnapshot(ctx, m.logger, id, path)
	if err != nil {
		// 打开失败不得遗留锁文件。
		if rerr := cachefile.ReleaseLock(lockPath); rerr != nil {
			err = errors.Join(err, rerr)
		}
		return nil, err
	}

	m.logger.DebugContext(ctx, "cache session opened",
		"path", path, "identity", id.String(), "fields", len(img.Fields), "corrupt", corrupt)

	return &session{
		id:       id,
		path:     path,
		lockPath: lockPath,
		fileMode: m.fileMode,
		logger:   m.logger,
		observer: m.observer,
		openedAt: time.Now(),
		disk:     img.Fields,
		staged:   make(map[string]*xarray.Array),
	}, nil
}

// lockedError 组装带持有者信息的 ErrCacheLocked。
// 锁文件读取失败（刚被释放或内容损坏）时退回到无细节的错误。
func (m *manager) lockedError(ctx context.Context, lockPath string) error {
	info, err := cachefile.ReadLock(lockPath)
	if err != nil {
		m.logger.WarnContext(ctx, "cache locked, holder info unavailable", "lock", lockPath, "error", err)
		return fmt.Errorf("%w: %s", ErrCacheLocked, lockPath)
	}
	return fmt.Errorf("%w: %s held by %s pid %d since %s",
		ErrCacheLocked, lockPath, info.Host, info.PID, info.LockedAt.Format(time.RFC3339))
}

// readSnapshot 读入磁盘镜像。缺失、损坏、身份不符都按空缓存处理，
// 只有意料之外的 IO 错误才会上报。打开与关闭共用同一套容错语义。
func readSnapshot(ctx context.Context, logger *slog.Logger, id xsimid.Identity, path string) (img *cachefile.Image, corrupt bool, err error) {
	img, err = cachefile.ReadImage(path)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return cachefile.NewImage(id), false, nil
	case errors.Is(err, cachefile.ErrBadImage):
		logger.WarnContext(ctx, "cache file unreadable, treating as empty", "path", path, "error", err)
		return cachefile.NewImage(id), true, nil
	default:
		return nil, false, err
	}

	if !img.Identity.Equal(id) {
		logger.WarnContext(ctx, "cache file belongs to a different identity, treating as empty",
			"path", path, "stored", img.Identity.String(), "requested", id.String())
		return cachefile.NewImage(id), true, nil
	}
	return img, false, nil
}
