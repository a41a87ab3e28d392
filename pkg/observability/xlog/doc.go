// Package xlog 装配 simkit 各组件共用的 *slog.Logger。
//
// 缓存、数据目录、对象门面等组件都通过可选项接收 *slog.Logger，
// 本包负责按统一方式把这样的 logger 构建出来：
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/simkit/cachectl.log").
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
//	mgr, err := xobjcache.New(
//		xobjcache.WithPrefix(dir),
//		xobjcache.WithLogger(logger.Logger),
//	)
//
// 特性：
//   - 链式配置：Set* 返回 Builder 自身，配置错误由 Build 统一返回
//   - 动态级别：Logger 持有共享的 slog.LevelVar，SetLevel 对所有派生 logger 实时生效
//   - 文件轮转：SetRotation 基于 lumberjack 按大小轮转，Build 返回的 cleanup 负责关闭
//   - 领域属性：Snap/Field/Identity 等辅助函数与库内部日志的字段名一致，
//     应用层日志可以与库日志按同一组 key 聚合检索
package xlog
