// Package xsimfiles 提供模拟数据集的字段抽取。
//
// # 设计理念
//
// 上层（对象门面）只关心"按字段名拿到完整原始表"，
// 数据在磁盘上如何组织由本包封装：
//   - Extractor 描述一个字段的抽取方式（keytype、文件类型、元素类型、列数）
//   - Provider 是单个快照数据集的只读视图
//   - Catalog 管理数据集根目录，按快照标识发放 Provider
//
// Load 以抽取器为参数而非字段名：调用方可以携带改写过的抽取器
// （如把粒子表改从原始快照文件读取），数据寻址随之改变。
//
// # 磁盘布局
//
// 数据集根目录下每个快照一个子目录：
//
//	<root>/<snap>/manifest.yaml
//	<root>/<snap>/<filetype>/<field>.f64|.i64|.b8
//
// manifest.yaml 声明全部抽取器；数据文件是小端序的原始列文件，
// 行数由文件长度推得。
//
// # 缓存与重试
//
// Catalog 用带 TTL 的 LRU 缓存解析后的 manifest，用 ristretto
// 按字节成本缓存解码后的列数据；共享文件系统上的瞬时读取失败
// 按指数退避重试。Load 返回的数组归调用方所有，可以就地修改。
package xsimfiles
