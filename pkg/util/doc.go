// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xttl: 带过期时间的条目与内存缓存，供各缓存组件复用
package util
