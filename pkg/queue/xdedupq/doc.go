// Package xdedupq 提供有界、按插入顺序出队、同时具备集合语义的阻塞队列。
//
// # 核心语义
//
//   - 容量固定，Offer 满时立即返回 false，Put/OfferTimeout 阻塞等待空位
//   - 重复 Offer 已存在的元素视为成功，但不改变其位置，也不增加计数
//   - Take/PollTimeout 阻塞直到队列非空，按首次插入顺序出队
//
// # 快速路径
//
// Offer 在插入前先用原子计数检查容量：队列已满时只在锁内判断成员关系，
// 已存在的元素返回 true，其余元素立即返回 false，不会进入插入路径。
//
// # 使用示例
//
//	q, err := xdedupq.New[string](1024)
//	if err != nil {
//	    return err
//	}
//	q.Offer("a")
//	q.Offer("a") // true，长度仍为 1
//	v, err := q.Take(ctx)
package xdedupq
