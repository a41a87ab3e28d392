// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xobjcache: 按对象身份寻址的磁盘缓存，锁文件互斥、合并写回
//
// 设计原则：
//   - 提供统一的接口抽象，调用方不感知磁盘布局
//   - 内置可观测性（日志、指标）
//   - 并发冲突立即失败，不做任何等待
package storage
