// simcachectl 是 simkit 对象缓存目录的运维工具。
//
// 缓存库本身只提供编程接口；锁文件清理、过期缓存回收这类人工补救
// 操作由本工具承担。
//
// 用法:
//
//	simcachectl [全局选项] <命令> [命令参数]
//
// 全局选项:
//
//	-p, --prefix      缓存目录 (默认: 当前目录)
//	    --log-level   日志级别 debug/info/warn/error (默认: info)
//	    --log-format  日志格式 text/json (默认: text)
//	    --log-file    日志文件路径，启用按大小轮转 (默认: 输出到 stderr)
//
// 命令:
//
//	ls       列出缓存目录内容（大小、年龄、锁定状态、对象身份）
//	show     解码并展示单个缓存文件（字段、形状、保存时间）
//	unlock   移除陈旧锁文件（持有进程崩溃后的人工补救）
//	sweep    按年龄清理缓存文件，可选 cron 定时运行
//
// unlock 命令说明:
//
//	锁文件表示某个会话正在写同一份缓存。持有进程崩溃时锁会残留，
//	后续会话会一直拿到"缓存被锁定"错误。确认没有进程仍在使用后，
//	用 unlock 移除。默认拒绝移除过新的锁（可能仍被持有），
//	可通过 --min-age 调整阈值或 --force 跳过检查。
//
// sweep 命令说明:
//
//	只删除超过 --older 年龄且未被锁定的缓存文件。
//	指定 --schedule 后以 cron 守护进程方式周期运行，SIGINT 退出。
//
// 退出码:
//
//	0: 命令执行成功
//	1: 命令执行失败（含 unlock 因锁过新被拒绝的场景）
//	2: 参数错误（无效时长、缺少必需参数、未知命令等）
//
// 示例:
//
//	simcachectl -p /data/cache ls                         # 列出缓存目录
//	simcachectl -p /data/cache ls --older 30d             # 只看 30 天以上的
//	simcachectl show --file /data/cache/SimObjCache_042_fof=1_all_0123456789abcdef.gob
//	simcachectl -p /data/cache unlock --all --min-age 2h  # 清理 2 小时以上的锁
//	simcachectl -p /data/cache sweep --older 30d          # 一次性清理
//	simcachectl -p /data/cache sweep --older 30d --schedule "0 3 * * *"
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "simcachectl",
		Usage:   "simkit 对象缓存目录运维工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "缓存目录",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 (debug/info/warn/error)",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "日志格式 (text/json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "日志文件路径（启用按大小轮转），默认输出到 stderr",
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"simkit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			// ExitCoder 错误（如未知命令）的消息需在此输出，
			// 替代 HandleExitCoder 的默认 os.Exit 行为。
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		// CLI 框架产生的参数错误（如未知 flag、未知命令）也返回退出码 2，
		// 与文档契约"参数错误 → 退出码 2"保持一致。
		if isCLIUsageError(err) {
			// ExitErrHandler 或 flag 解析器已向 stderr 输出错误详情，此处仅设置退出码
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

// isCLIUsageError 识别 CLI 框架自身产生的参数解析错误。
func isCLIUsageError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "flag provided but not defined") ||
		strings.Contains(msg, "No help topic for")
}
