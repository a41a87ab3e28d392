package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v3"

	"github.com/omeyang/simkit/internal/cachefile"
	"github.com/omeyang/simkit/pkg/observability/xlog"
)

// defaultMinLockAge 是 unlock 默认的锁文件最小年龄。
// 低于该年龄的锁很可能仍被存活的会话持有，默认拒绝移除。
const defaultMinLockAge = time.Hour

// exitError 表示需要非零退出码但已完成输出的场景。
// 命令内部已完成所有输出，main 只需设置退出码。
type exitError struct {
	code int
}

func (e *exitError) Error() string { return "" }

// usageError 表示命令参数错误，main 映射为退出码 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// setupSignalHandler 设置信号处理。
// 设计决策: 第一次信号优雅取消，第二次信号强制退出（退出码 130 = 128 + SIGINT）。
// sweep 守护进程阻塞时，用户可通过再次 Ctrl+C 强制退出。
func setupSignalHandler(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel() // 第一次信号: 优雅取消

		<-sigCh
		signal.Stop(sigCh) // 回收订阅
		os.Exit(130)       // 第二次信号: 强制退出
	}()
}

// buildLogger 按全局选项装配日志器。
func buildLogger(cmd *cli.Command) (*xlog.Logger, func() error, error) {
	b := xlog.New().
		SetLevelString(cmd.String("log-level")).
		SetFormat(cmd.String("log-format"))
	if path := cmd.String("log-file"); path != "" {
		b.SetRotation(path)
	}

	logger, cleanup, err := b.Build()
	if err != nil {
		return nil, nil, &usageError{msg: fmt.Sprintf("日志配置无效: %v", err)}
	}
	return logger, cleanup, nil
}

// createCommands 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createLsCommand(),
		createShowCommand(),
		createUnlockCommand(),
		createSweepCommand(),
	}
}

// createLsCommand 创建 ls 子命令。
func createLsCommand() *cli.Command {
	return &cli.Command{
		Name:    "ls",
		Aliases: []string{"l"},
		Usage:   "列出缓存目录内容（大小、年龄、锁定状态、对象身份）",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "older",
				Usage: "只显示超过该年龄的文件（如 36h、30d）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			var olderThan time.Duration
			if s := cmd.String("older"); s != "" {
				olderThan, err = parseAge(s)
				if err != nil {
					return &usageError{msg: fmt.Sprintf("--older 取值无效: %v", err)}
				}
			}
			return cmdLs(ctx, os.Stdout, logger, cmd.String("prefix"), olderThan)
		},
	}
}

// createShowCommand 创建 show 子命令。
func createShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Aliases:   []string{"s"},
		Usage:     "解码并展示单个缓存文件",
		ArgsUsage: "[缓存文件路径]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "缓存文件路径",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("file")
			if path == "" && cmd.Args().Len() > 0 {
				path = cmd.Args().First()
			}
			return cmdShow(ctx, os.Stdout, path)
		},
	}
}

// createUnlockCommand 创建 unlock 子命令。
func createUnlockCommand() *cli.Command {
	return &cli.Command{
		Name:    "unlock",
		Aliases: []string{"u"},
		Usage:   "移除陈旧锁文件（持有进程崩溃后的人工补救）",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "移除目录下所有符合年龄条件的锁文件",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "指定单个锁文件（或其对应缓存文件）路径",
			},
			&cli.DurationFlag{
				Name:  "min-age",
				Usage: "锁文件最小年龄，低于该值拒绝移除",
				Value: defaultMinLockAge,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "跳过最小年龄检查强制移除（先确认无进程仍持有该锁）",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			return cmdUnlock(ctx, os.Stdout, logger, unlockOptions{
				prefix: cmd.String("prefix"),
				file:   cmd.String("file"),
				all:    cmd.Bool("all"),
				minAge: cmd.Duration("min-age"),
				force:  cmd.Bool("force"),
			})
		},
	}
}

// createSweepCommand 创建 sweep 子命令。
func createSweepCommand() *cli.Command {
	return &cli.Command{
		Name:    "sweep",
		Aliases: []string{"gc"},
		Usage:   "按年龄清理缓存文件（锁定中的文件永不删除）",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "older",
				Usage: "清理超过该年龄的缓存文件（如 720h、30d），必填",
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "参与清理的文件名模式",
				Value: "*.gob",
			},
			&cli.StringFlag{
				Name:  "schedule",
				Usage: "cron 表达式（5 段标准格式），指定后以守护进程方式周期清理",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "只打印将被删除的文件，不实际删除",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, cleanup, err := buildLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()

			s := cmd.String("older")
			if s == "" {
				return &usageError{msg: "sweep 需要 --older 指定清理年龄（如 720h、30d）"}
			}
			olderThan, err := parseAge(s)
			if err != nil {
				return &usageError{msg: fmt.Sprintf("--older 取值无效: %v", err)}
			}

			return cmdSweep(ctx, os.Stdout, logger, sweepOptions{
				prefix:    cmd.String("prefix"),
				olderThan: olderThan,
				pattern:   cmd.String("pattern"),
				schedule:  cmd.String("schedule"),
				dryRun:    cmd.Bool("dry-run"),
			})
		},
	}
}

// cmdLs 列出缓存目录内容。
func cmdLs(ctx context.Context, out io.Writer, logger *xlog.Logger, prefix string, olderThan time.Duration) error {
	start := time.Now()
	entries, err := scanCacheDir(ctx, prefix, true)
	if err != nil {
		return err
	}
	logger.Debug("缓存目录扫描完成",
		xlog.Path(prefix), xlog.Count(len(entries)), xlog.Duration(time.Since(start)))

	now := time.Now()
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "名称\t大小\t年龄\t状态\t字段\t身份")

	shown := 0
	for _, e := range entries {
		age := now.Sub(e.modTime)
		if olderThan > 0 && age < olderThan {
			continue
		}
		status := "正常"
		switch {
		case e.locked:
			status = "锁定"
		case e.corrupt:
			status = "损坏"
		}
		identity := e.identity
		if identity == "" {
			identity = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.name, formatSize(e.size), formatAge(age), status, e.fields, identity)
		shown++
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if shown == 0 {
		fmt.Fprintln(out, "未找到符合条件的缓存文件")
	}
	return nil
}

// cmdShow 解码并展示单个缓存文件。
func cmdShow(_ context.Context, out io.Writer, path string) error {
	if strings.TrimSpace(path) == "" {
		return &usageError{msg: "show 需要 --file 指定缓存文件路径"}
	}

	img, err := cachefile.ReadImage(path)
	if err != nil {
		return fmt.Errorf("解码缓存文件失败: %w", err)
	}

	fmt.Fprintf(out, "文件:     %s\n", path)
	fmt.Fprintf(out, "版本:     %d\n", img.Version)
	fmt.Fprintf(out, "身份:     %s\n", img.Identity.Canonical())
	fmt.Fprintf(out, "保存时间: %s\n", img.SavedAt.Format(time.RFC3339))

	lockPath := cachefile.LockPath(path)
	if info, lerr := cachefile.ReadLock(lockPath); lerr == nil {
		fmt.Fprintf(out, "锁定:     是 (host=%s pid=%d since=%s)\n",
			info.Host, info.PID, info.LockedAt.Format(time.RFC3339))
	} else if errors.Is(lerr, fs.ErrNotExist) {
		fmt.Fprintf(out, "锁定:     否\n")
	} else {
		fmt.Fprintf(out, "锁定:     是 (锁内容不可读: %v)\n", lerr)
	}

	names := make([]string, 0, len(img.Fields))
	for name := range img.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "字段:     %d\n", len(names))
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  名称\t类型\t形状\t元素数")
	for _, name := range names {
		arr := img.Fields[name]
		fmt.Fprintf(w, "  %s\t%s\t%v\t%d\n", name, arr.Kind(), arr.Shape(), arr.Size())
	}
	return w.Flush()
}

// unlockOptions unlock 命令参数。
type unlockOptions struct {
	prefix string
	file   string
	all    bool
	minAge time.Duration
	force  bool
}

// cmdUnlock 移除陈旧锁文件。
// 年龄判断使用锁文件的修改时间而非锁体内容：
// 锁体损坏或格式变更时修改时间仍然可靠。
func cmdUnlock(ctx context.Context, out io.Writer, logger *xlog.Logger, opts unlockOptions) error {
	hasFile := opts.file != ""
	if opts.all == hasFile {
		return &usageError{msg: "unlock 需要且只能指定 --all 或 --file 之一"}
	}

	var lockPaths []string
	if opts.all {
		dirents, err := os.ReadDir(opts.prefix)
		if err != nil {
			return fmt.Errorf("读取缓存目录失败: %w", err)
		}
		for _, de := range dirents {
			if de.IsDir() || !strings.HasSuffix(de.Name(), cachefile.LockSuffix) {
				continue
			}
			lockPaths = append(lockPaths, filepath.Join(opts.prefix, de.Name()))
		}
		if len(lockPaths) == 0 {
			fmt.Fprintln(out, "未找到锁文件")
			return nil
		}
	} else {
		path := opts.file
		if !strings.HasSuffix(path, cachefile.LockSuffix) {
			// 允许直接给缓存文件路径
			path = cachefile.LockPath(path)
		}
		lockPaths = []string{path}
	}

	var removed, skipped int
	var errs []error
	for _, lockPath := range lockPaths {
		if err := ctx.Err(); err != nil {
			return err
		}

		st, err := os.Lstat(lockPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && opts.all {
				continue // 扫描与移除之间被持有者正常释放
			}
			errs = append(errs, fmt.Errorf("查看 %s 失败: %w", lockPath, err))
			continue
		}

		age := time.Since(st.ModTime())
		holder := describeHolder(lockPath)

		if !opts.force && age < opts.minAge {
			fmt.Fprintf(out, "跳过 %s: 锁仅 %s 旧，低于最小年龄 %s（确认无进程持有后用 --force）%s\n",
				lockPath, formatAge(age), opts.minAge, holder)
			skipped++
			continue
		}

		if err := os.Remove(lockPath); err != nil {
			errs = append(errs, fmt.Errorf("移除 %s 失败: %w", lockPath, err))
			continue
		}
		logger.Info("锁文件已移除", xlog.Path(lockPath), xlog.Duration(age))
		fmt.Fprintf(out, "已移除 %s（%s 旧）%s\n", lockPath, formatAge(age), holder)
		removed++
	}

	fmt.Fprintf(out, "共移除 %d 个锁文件，跳过 %d 个\n", removed, skipped)
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if skipped > 0 {
		// 有锁被拒绝移除时以非零退出码提醒操作者
		return &exitError{code: 1}
	}
	return nil
}

// describeHolder 读取锁文件内容生成持有者描述，读不到时返回空串。
func describeHolder(lockPath string) string {
	info, err := cachefile.ReadLock(lockPath)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(" [host=%s pid=%d since=%s]",
		info.Host, info.PID, info.LockedAt.Format(time.RFC3339))
}

// sweepOptions sweep 命令参数。
type sweepOptions struct {
	prefix    string
	olderThan time.Duration
	pattern   string
	schedule  string
	dryRun    bool
}

// cmdSweep 按年龄清理缓存文件。
func cmdSweep(ctx context.Context, out io.Writer, logger *xlog.Logger, opts sweepOptions) error {
	if opts.olderThan <= 0 {
		return &usageError{msg: "sweep 需要 --older 指定正的清理年龄（如 720h、30d）"}
	}

	if opts.schedule == "" {
		removed, freed, err := sweepOnce(ctx, out, logger, opts)
		if err != nil {
			return err
		}
		if opts.dryRun {
			fmt.Fprintf(out, "[dry-run] 将删除 %d 个文件，释放 %s\n", removed, formatSize(freed))
		} else {
			fmt.Fprintf(out, "共删除 %d 个文件，释放 %s\n", removed, formatSize(freed))
		}
		return nil
	}

	return runSweepDaemon(ctx, out, logger, opts)
}

// runSweepDaemon 以 cron 守护进程方式周期清理，直到 context 取消。
func runSweepDaemon(ctx context.Context, out io.Writer, logger *xlog.Logger, opts sweepOptions) error {
	c := cron.New()
	_, err := c.AddFunc(opts.schedule, func() {
		removed, freed, err := sweepOnce(ctx, io.Discard, logger, opts)
		if err != nil {
			logger.Error("清理失败", xlog.Path(opts.prefix), xlog.Err(err))
			return
		}
		logger.Info("清理完成",
			xlog.Path(opts.prefix), xlog.Count(removed), xlog.Bytes(freed))
	})
	if err != nil {
		return &usageError{msg: fmt.Sprintf("--schedule 表达式无效: %v", err)}
	}

	c.Start()
	logger.Info("定时清理已启动",
		xlog.Path(opts.prefix), slog.String("schedule", opts.schedule))
	fmt.Fprintf(out, "定时清理已启动（%s），Ctrl+C 退出\n", opts.schedule)

	<-ctx.Done()

	// 等待进行中的清理任务结束再退出
	stopCtx := c.Stop()
	<-stopCtx.Done()
	logger.Info("定时清理已停止", xlog.Path(opts.prefix))
	return nil
}
