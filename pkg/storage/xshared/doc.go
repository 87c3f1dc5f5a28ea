// Package xshared 提供两级共享值缓存：多个主键引用同一个按共享键计算一次的值，各自独立过期。
//
// # 数据模型
//
//   - primary: K → TTL 条目（值 + 过期时刻）
//   - shared:  S → V，每个共享键的值只计算一次
//
// 主键中的每个值都来自 shared；一个值可以被多个过期时刻不同的主键引用。
//
// # 使用示例
//
//	c := xshared.New[string, string, *Template]()
//	tpl, _, err := c.Put("tenant-a", "invoice.xsl", compile, 60)
//	tpl, _, err = c.Put("tenant-b", "invoice.xsl", compile, 5) // compile 不会再次调用
//	tpl, ok := c.Get("tenant-a")
//
// # TTL 约定
//
// ttlSeconds < 1 表示删除主键条目并返回旧值，不会调用 provider，也不会创建共享条目。
//
// # 清理
//
// Get 不会删除过期条目。过期主键由 [Cache.PrunePrimary] 清理，
// 不再被有效主键引用的共享值由 [Cache.Prune] 清理，二者都需要调用方周期执行，
// 也可以通过 [Cache.Schedule] 注册到 xsched 调度器。
//
// Prune 按值相等判断"是否仍被引用"，而不是按共享键来源：
// 两个不同共享键算出相等的值时，只要其中一个仍被引用，两个共享条目都会保留。
// 因此 V 必须是可比较的，且接口类型的 V 不能持有不可比较的动态值。
package xshared
