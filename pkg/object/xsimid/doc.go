// Package xsimid 定义模拟对象的身份标识类型。
//
// 一次会话绑定一个四元组身份：快照 ID、对象 ID、掩码类型、掩码参数。
// 身份决定缓存文件的寻址：两个身份完全相同的会话读写同一个缓存文件。
//
// # 核心类型
//
//   - SnapID：快照标识，由数据提供方定义格式，本包视为不透明字符串
//   - ObjID：对象标识，命名整数分量的集合（如 {fof: 1, sub: 0}）
//   - MaskArgs：掩码参数，命名浮点参数的集合（如 {aperture: 30}）
//   - Identity：以上三者加掩码类型的组合，提供规范串与摘要
//
// # 规范串与摘要
//
// Canonical() 按键名排序输出确定性的规范串，Digest() 返回其 xxhash64
// 十六进制摘要。缓存文件名基于两者派生，保证相同选择条件寻址同一文件。
//
// # 注意事项
//
//   - ObjID 与 MaskArgs 是 map 类型，构造后不应再修改（身份应当不可变）
//   - 浮点参数使用最短往返表示（strconv 'g' 格式），跨进程稳定
package xsimid
