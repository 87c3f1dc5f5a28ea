// Package xoverflow 提供带有界进程内层的溢出缓存：内部层满了之后，新条目写入委托缓存。
//
// # 分层规则
//
//   - 内部层容量固定为 capacity，用原子计数 + CAS 预留槽位，不加锁
//   - 已在内部层的 key 原地替换，不占用新槽位
//   - 新 key 预留成功时写入内部层，并向唯一的 created 监听者发布事件；
//     CAS 失败或容量耗尽时原样转交委托缓存
//   - 条目一旦进入委托缓存就不会迁回内部层，即使内部层之后有了空位
//   - 处于溢出状态时，写入新 key 前会先检查委托缓存，已在委托缓存中的 key 继续写委托缓存，
//     保证每个 key 只存在于一层
//   - 发生过溢出、或创建时委托缓存非空（例如复用上次 Close 写入的 Redis Hash）时进入溢出状态，
//     Clear 成功后复位
//
// # 读取与遍历
//
// Get/Contains/Remove 先查内部层，再查委托缓存。
// Range/All 先遍历内部层，再遍历委托缓存，是惰性拼接而不是合并排序。
//
// # 关闭
//
// Close 把内部层的剩余条目写入委托缓存，然后关闭委托缓存。幂等。
//
// # 委托实现
//
//   - [LRUDelegate]：基于 github.com/hashicorp/golang-lru/v2 的有界进程内缓存
//   - [RedisDelegate]：基于 github.com/redis/go-redis/v9，每个缓存对应一个 Redis Hash，
//     调用经过 github.com/sony/gobreaker/v2 熔断器，Redis 不可用时快速失败；
//     可以用 [WithRetry] 开启基于 github.com/avast/retry-go/v5 的有限次重试，熔断打开时不重试
//
// # 不支持的操作
//
// Invoke、InvokeAll、PutIfAbsent、Unwrap、LoadAll 直接返回 [ErrNotSupported]，
// 它包装了 errors.ErrUnsupported，调用方不会把"不支持"误认为"空结果"。
package xoverflow
