// Package object 提供模拟对象相关的子包。
//
// 子包列表：
//   - xsimid: 对象身份，规范串与摘要
//   - xmask: 行掩码构造器注册表与内置构造器
//   - xsimobj: 对象字段门面，掩码、变换与缓存的交付管线
//
// 设计原则：
//   - 身份一经构造即不可变，寻址全部由规范串推导
//   - 掩码构造器通过注册表扩展，参数由各构造器自行校验
//   - 字段按需交付，同一会话内不重复计算
package object
