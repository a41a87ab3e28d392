// Package xmask 构建按键类别选择数据行的掩码。
//
// # 设计理念
//
// 模拟数据的表按 keytype 分族：群表、粒子表、头信息等。
// 同一对象在不同族的表里对应不同的行集合，掩码就是"该对象
// 在这一族表里占哪些行"的描述。
//
// 掩码构建器由配置按名字绑定到 keytype（见配置包的 masks 节），
// 本包提供注册表与六种内置构建器：
//
//   - all：不过滤，适用于头信息等全局值
//   - field-equals：单字段等于对象分量
//   - row-match：多字段同时等于各自分量（逻辑与）
//   - index-equals：行号等于对象分量（可配基准偏移）
//   - id-range：按偏移表与计数表取连续区间
//   - aperture：按到对象中心的距离取球形孔径
//
// # 前置字段
//
// 构建器通过 Requires 声明所需字段，通过 Values 拉取原始表。
// 前置字段不做重定中心与箱回折；aperture 构建器在内部完成
// 自己需要的坐标变换。
package xmask
