// Package storage 提供缓存相关的子包。
//
// 子包列表：
//   - xoverflow: 容量受限的内存缓存，超出部分写入委托缓存（LRU 或 Redis）
//   - xshared: 多个主键共享同一个值的过期缓存
//
// 设计原则：
//   - 关闭和清理路径不丢数据
//   - 通过 xmetrics.Counters 暴露内部计数
package storage
