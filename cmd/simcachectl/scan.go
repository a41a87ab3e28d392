package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/observability/xlog"
)

// scanConcurrency 目录扫描的并发上限。
// 扫描以 stat 和小文件解码为主，适度并发即可摊平磁盘延迟。
const scanConcurrency = 8

// cacheEntry 是缓存目录中一个文件的扫描结果。
type cacheEntry struct {
	name     string
	path     string
	size     int64
	modTime  time.Time
	locked   bool
	identity string // 解码成功时为身份规范串
	fields   int
	corrupt  bool
}

// scanCacheDir 并发扫描缓存目录。
// decode 为 true 时解码每个文件以取出身份与字段数，
// 解码失败的文件标记为 corrupt（可能损坏，也可能不是缓存文件）。
// 锁文件本身不出现在结果里，只体现为对应缓存文件的 locked 标记。
func scanCacheDir(ctx context.Context, prefix string, decode bool) ([]cacheEntry, error) {
	dirents, err := os.ReadDir(prefix)
	if err != nil {
		return nil, fmt.Errorf("读取缓存目录失败: %w", err)
	}

	var names []string
	for _, de := range dirents {
		if de.IsDir() || strings.HasSuffix(de.Name(), cachefile.LockSuffix) {
			continue
		}
		names = append(names, de.Name())
	}

	entries := make([]cacheEntry, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(scanConcurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(prefix, name)
			info, err := os.Stat(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil // 扫描期间被删除
				}
				return fmt.Errorf("查看 %s 失败: %w", path, err)
			}

			e := cacheEntry{
				name:    name,
				path:    path,
				size:    info.Size(),
				modTime: info.ModTime(),
			}
			if _, err := os.Lstat(path + cachefile.LockSuffix); err == nil {
				e.locked = true
			}
			if decode {
				if img, err := cachefile.ReadImage(path); err != nil {
					e.corrupt = true
				} else {
					e.identity = img.Identity.Canonical()
					e.fields = len(img.Fields)
				}
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 扫描期间消失的文件留下零值条目，过滤掉
	kept := entries[:0]
	for _, e := range entries {
		if e.name != "" {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

// sweepOnce 执行一轮清理，返回删除（或 dry-run 下将删除）的文件数与字节数。
// 只处理匹配 pattern 的普通文件；锁定中的文件表示正被其他会话写入，永不删除。
func sweepOnce(ctx context.Context, out io.Writer, logger *xlog.Logger, opts sweepOptions) (removed int, freed int64, err error) {
	dirents, err := os.ReadDir(opts.prefix)
	if err != nil {
		return 0, 0, fmt.Errorf("读取缓存目录失败: %w", err)
	}

	now := time.Now()
	var errs []error
	for _, de := range dirents {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		name := de.Name()
		if de.IsDir() || strings.HasSuffix(name, cachefile.LockSuffix) {
			continue
		}
		if ok, _ := filepath.Match(opts.pattern, name); !ok {
			continue
		}

		path := filepath.Join(opts.prefix, name)
		info, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("查看 %s 失败: %w", path, err))
			continue
		}

		age := now.Sub(info.ModTime())
		if age < opts.olderThan {
			continue
		}
		if _, err := os.Lstat(path + cachefile.LockSuffix); err == nil {
			logger.Debug("跳过锁定中的缓存文件", xlog.Path(path))
			continue
		}

		if opts.dryRun {
			fmt.Fprintf(out, "将删除 %s（%s，%s 旧）\n", path, formatSize(info.Size()), formatAge(age))
			removed++
			freed += info.Size()
			continue
		}

		if err := os.Remove(path); err != nil {
			errs = append(errs, fmt.Errorf("删除 %s 失败: %w", path, err))
			continue
		}
		logger.Debug("缓存文件已删除", xlog.Path(path), xlog.Bytes(info.Size()), xlog.Duration(age))
		fmt.Fprintf(out, "已删除 %s（%s，%s 旧）\n", path, formatSize(info.Size()), formatAge(age))
		removed++
		freed += info.Size()
	}

	return removed, freed, errors.Join(errs...)
}

// parseAge 解析年龄时长。
// 在 time.ParseDuration 的基础上支持天单位后缀，如 "30d"、"1.5d"。
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("时长为空")
	}

	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("无效的天数 %q", s)
		}
		if n < 0 {
			return 0, fmt.Errorf("时长不能为负: %q", s)
		}
		return time.Duration(n * 24 * float64(time.Hour)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("无效的时长 %q（支持 time.ParseDuration 格式或天数后缀，如 36h、30d）", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("时长不能为负: %q", s)
	}
	return d, nil
}

// formatSize 把字节数格式化为人类可读的 IEC 形式。
func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}

// formatAge 把年龄格式化为最接近的整数单位。
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
