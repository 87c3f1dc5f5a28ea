// Package xdelayq 提供按剩余延迟排序、同时具备集合语义的无界阻塞队列。
//
// # 核心语义
//
//   - 队首是最早到期的元素；只有剩余延迟 <= 0 的元素才能被取出
//   - 成员资格由 key 函数决定：同一 key 重复 Offer 视为成功，但不会重新入堆或调整顺序
//   - Take/PollTimeout 使用 leader/follower 等待：同一时刻最多一个 leader
//     按队首剩余延迟精确定时等待，其余等待者只等信号，不重复检查时钟
//
// # 元素类型
//
// 元素实现 [Delayed] 即可。需要"值 + 到期时刻"时可以直接使用 [Deferred]：
//
//	q := xdelayq.NewDeferred[string]()
//	q.Offer(xdelayq.After("job-1", 5*time.Second))
//	job, err := q.Take(ctx) // 约 5 秒后返回
//
// # 迭代
//
// [Queue.Iterator] 在锁内复制快照后无锁遍历。通过迭代器删除时按快照中的节点身份删除，
// 即使元素字段在快照之后被修改也能删除正确的实例。
package xdelayq
