package xoverflow

import "sync"

// slot 是内部层的一个条目。
//
// 删除时先从 map 中摘除再标记 removed；替换遇到已标记的 slot 会重新走写入流程，
// 避免把值写进已经被摘除的 slot。
type slot[V any] struct {
	mu      sync.Mutex
	value   V
	removed bool
}

func newSlot[V any](v V) *slot[V] {
	return &slot[V]{value: v}
}

func (s *slot[V]) get() (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, !s.removed
}

// swap 替换值并返回旧值；slot 已被删除时返回 false。
func (s *slot[V]) swap(v V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		var zero V
		return zero, false
	}
	old := s.value
	s.value = v
	return old, true
}

func (s *slot[V]) remove() V {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = true
	return s.value
}
