// Package xttl 提供带过期时间的条目类型和简单的 TTL 缓存。
//
// # 核心组件
//
//   - Entry：值 + 过期时刻，now < ExpiresAt 时有效。读取时惰性判断，不主动清理
//   - Memory：基于 github.com/jellydator/ttlcache/v3 的精确 TTL 缓存，条目级 TTL
//   - Admission：基于 github.com/dgraph-io/ristretto/v2 的准入式缓存，
//     按 cost 限制容量，写入可能被准入策略拒绝
//
// # TTL 约定
//
// Put 的 ttl 小于 1 秒时视为删除该 key，与 xshared 的 ttlSeconds < 1 约定一致。
package xttl
