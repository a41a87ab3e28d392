package xobjcache

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/object/xsimid"
	"github.com/omeyang/simkit/pkg/observability/xmetrics"
	"github.com/omeyang/simkit/pkg/util/xarray"
)

// session 是持锁的缓存会话。
// 并发安全：Lookup、Record、Fields、Close 可被多个 goroutine 调用，
// 但典型用法是单 goroutine 的 Open→读写→Close。
type session struct {
	id       xsimid.Identity
	path     string
	lockPath string
	fileMode fs.FileMode
	logger   *slog.Logger
	observer xmetrics.Observer
	openedAt time.Time

	mu     sync.Mutex
	closed bool
	disk   map[string]*xarray.Array
	staged map[string]*xarray.Array
}

func (s *session) Identity() xsimid.Identity {
	return s.id
}

func (s *session) Lookup(name string) (*xarray.Array, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	if v, ok := s.staged[name]; ok {
		return v, true
	}
	v, ok := s.disk[name]
	return v, ok
}

func (s *session) Record(name string, value *xarray.Array) error {
	if name == "" {
		return ErrEmptyFieldName
	}
	if value == nil {
		return ErrNilField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.staged[name] = value
	return nil
}

func (s *session) Fields() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	seen := make(map[string]struct{}, len(s.disk)+len(s.staged))
	for name := range s.disk {
		seen[name] = struct{}{}
	}
	for name := range s.staged {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	staged := s.staged
	s.staged = nil
	s.disk = nil
	s.mu.Unlock()

	ctx := context.Background()
	_, span := xmetrics.Start(ctx, s.observer, xmetrics.SpanOptions{
		Component: "xobjcache",
		Operation: "close",
		Kind:      xmetrics.KindStorage,
		Attrs:     []xmetrics.Attr{{Key: "staged", Value: len(staged)}},
	})

	var errs []error
	wrote := false
	if len(staged) > 0 {
		if err := s.merge(ctx, staged); err != nil {
			errs = append(errs, err)
		} else {
			wrote = true
		}
	}

	// 无论写回成败，锁都要释放且只释放一次。
	if err := cachefile.ReleaseLock(s.lockPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "lock file vanished while held, mutual exclusion may have been violated",
				"lock", s.lockPath)
			errs = append(errs, ErrLockLost)
		} else {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	span.End(xmetrics.Result{Err: err, Attrs: []xmetrics.Attr{{Key: "wrote", Value: wrote}}})
	s.logger.DebugContext(ctx, "cache session closed",
		"path", s.path, "staged", len(staged), "wrote", wrote,
		"held", time.Since(s.openedAt), "error", err)
	return err
}

// merge 重新解码磁盘镜像，并入暂存字段后原子重写缓存文件。
// 暂存字段覆盖磁盘上的同名字段。
func (s *session) merge(ctx context.Context, staged map[string]*xarray.Array) error {
	img, _, err := readSnapshot(ctx, s.logger, s.id, s.path)
	if err != nil {
		return err
	}
	for name, value := range staged {
		img.Fields[name] = value
	}
	img.Identity = s.id
	img.SavedAt = time.Now().UTC()
	return cachefile.WriteImage(s.path, img, s.fileMode)
}

// noopSession 是禁用缓存时的空操作会话。
// 不触碰磁盘也不加锁，但关闭语义与真实会话一致。
type noopSession struct {
	id xsimid.Identity

	mu     sync.Mutex
	closed bool
}

func (s *noopSession) Identity() xsimid.Identity { return s.id }

func (s *noopSession) Lookup(string) (*xarray.Array, bool) { return nil, false }

func (s *noopSession) Record(name string, value *xarray.Array) error {
	if name == "" {
		return ErrEmptyFieldName
	}
	if value == nil {
		return ErrNilField
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *noopSession) Fields() []string { return nil }

func (s *noopSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	return nil
}
