// Package cachefile 提供对象缓存文件的磁盘格式与命名规则。
//
// 本包是 internal 包，仅供 pkg/storage/xobjcache 与 cmd/simcachectl 使用。
// 外部用户不应直接导入此包。
//
// 依赖策略: 本包作为缓存文件族的共享内核（shared kernel），
// 把文件命名、镜像编解码、锁文件格式从缓存管理器中提取出来，
// 使运维工具无需经过管理器即可检视缓存目录。
// 依赖链为：高层 pkg（xobjcache）→ internal/cachefile → 低层 pkg（xsimid、xarray），
// 逻辑上仍从高到低，不构成循环依赖。
//
// 主要功能：
//   - 缓存文件名模板渲染与合法性校验（单路径段，不含分隔符）
//   - 缓存镜像的 gob 编解码（带版本号，供前向兼容判定）
//   - 锁文件的原子创建、持有者信息编解码与删除
//   - 同目录临时文件加重命名的原子写入
package cachefile
