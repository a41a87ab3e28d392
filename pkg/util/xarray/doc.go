// Package xarray 提供模拟数据字段的数值数组类型与选择掩码。
//
// 数据提供方读出的原始表（粒子坐标、群编号、质量等）在本包中统一表示为
// 行主序的 Array，支持三种元素类型：float64、int64、bool。对象选择通过
// Mask 作用于第 0 轴（行）完成。
//
// # 核心类型
//
//   - Array：一维或多维数值数组，按行主序存储
//   - Mask：行选择掩码，三种形态：全选、布尔掩码、连续区间
//
// # 坐标后处理
//
// SubRow 从每一行中减去一个中心行（坐标重定心），WrapPeriodic 将坐标折回
// [-L/2, L/2]（周期盒回绕）。两者仅对 float64 数组有效，且就地修改。
//
// # 序列化
//
// Array 实现 GobEncoder/GobDecoder，缓存文件按 gob 持久化。gob 是
// Go 特有的二进制格式，不保证跨架构、跨版本可移植——与缓存文件
// "机器本地、可随时删除" 的定位一致。
//
// # 注意事项
//
//   - Float64s/Int64s/Bools 返回底层切片，调用方不得修改
//   - Select 返回新数组（全选掩码除外，此时返回原数组）
package xarray
