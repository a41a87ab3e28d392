// Package xobjcache 提供按对象身份寻址的磁盘缓存管理器。
//
// # 设计理念
//
// 每个对象身份（快照、对象标识、掩码）对应缓存目录下的一个缓存文件，
// 文件内容是字段名到数值数组的映射。管理器不理解字段语义，
// 只负责寻址、互斥、读取与合并写回。
//
// # 会话与锁
//
// 使用方通过 Open 打开会话。打开即加锁：在缓存文件旁以 O_CREATE|O_EXCL
// 原子创建 ".lock" 文件，创建成功即持有锁。锁的判据是"锁文件存在"，
// 不是操作系统的建议锁（flock），因此跨 NFS 等网络文件系统同样成立。
//
// 锁已被占用时 Open 立即返回 ErrCacheLocked，不等待不重试。
// 进程崩溃会留下残留锁，管理器不做自动检测，由运维用 simcachectl
// 检视锁文件中的持有者信息后人工解除。
//
// # 读取与写回
//
// 打开时读入磁盘镜像作为会话快照；Record 只在内存中暂存；
// Close 时重新解码磁盘镜像，与暂存字段取并集（暂存优先）后
// 原子重写整个文件，随后无条件释放锁。未暂存任何字段时不触碰缓存文件。
//
// 缓存文件损坏按空缓存处理：会话照常进行，下次带暂存字段的 Close
// 会重写出完整有效的文件。
//
// # 禁用模式
//
// WithDisabled(true) 时 Open 返回纯空操作会话：不建锁文件、不读写磁盘，
// Lookup 一律未命中，Record 接受后丢弃。上层代码无需感知缓存是否启用。
package xobjcache
