// Package xsimobj 把一次模拟中的单个天体对象封装为字段门面。
//
// # 设计理念
//
// 调用方描述"哪个快照里的哪个对象、用什么掩码"（见 xsimid.Identity），
// 然后按名字取字段；数据寻址、行筛选、坐标变换与缓存全部在门面内完成。
// 每个字段的交付管线：
//
//	内存 → 缓存会话 → 数据提供方加载 → 按 keytype 掩码选行
//	     → 减质心（recenter）→ 周期箱回折（box_wrap）→ 记入缓存
//
// 质心与箱边长本身也是字段，通过同一管线递归获取；
// 掩码的前置字段则绕过缓存直接从提供方读原始表。
//
// # 会话与锁
//
// Open 会为对象身份打开缓存会话并加锁；锁被占用时立即返回
// ErrCacheLocked，调用方自行决定重试或换对象。Close 写回缓存
// 并释放锁。推荐使用 With 包裹整个访问过程，保证锁必被释放。
//
// # 抽取器改写
//
// 配置的 extractors.edits 在 Open 时按会话掩码类型改写字段寻址，
// 例如孔径掩码下粒子表改从原始快照文件读取。改写对字段加载与
// 掩码前置加载同时生效。
//
// # 并发
//
// Object 的方法串行化执行，可以跨 goroutine 调用，但会话对缓存
// 文件是独占的：同一身份同时只能有一个启用缓存的 Object。
package xsimobj
