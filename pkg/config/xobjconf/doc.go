// Package xobjconf 提供对象门面的配置加载、校验与热重载。
//
// # 配置内容
//
// 一份配置描述一套模拟数据的访问规则：
//   - cache: 缓存目录、文件名模板与禁用开关
//   - fields: 坐标字段的重心平移与周期盒折返规则
//   - masks: keytype 到掩码构造器的绑定（可按掩码类型细分）
//   - extractors: 按条件改写抽取器的规则
//
// 配置是纯数据（YAML 或 JSON），掩码构造器通过名字绑定到
// pkg/object/xmask 的注册表，配置文件里不出现任何可执行内容。
//
// # 加载与重载
//
// New 从文件加载并解析出典型结构 Spec，解析失败或校验失败时拒绝加载。
// Reload 重新读取文件，只有新配置通过校验才会替换旧配置，
// 否则保留旧配置并返回错误。Watch 基于 fsnotify 监视文件变更自动重载。
package xobjconf
