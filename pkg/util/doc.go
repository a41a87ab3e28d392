// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xarray: 行主序多维数组，行掩码选取、重定中心与周期回折
//
// 设计原则：
//   - 零值不可用的显式构造，形状与类型在边界处校验
//   - 数值内核操作原地进行，避免不必要的分配
//   - 跨进程稳定的序列化表示
package util
