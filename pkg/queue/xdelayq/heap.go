package xdelayq

// node 是堆中的节点。key 在入队时计算并固定，之后元素字段变化不影响删除。
type node[K comparable, E Delayed] struct {
	elem  E
	key   K
	seq   uint64
	index int // 在堆中的下标，-1 表示已出堆
}

// nodeHeap 实现 container/heap.Interface，按剩余延迟升序，延迟相同按入队顺序。
type nodeHeap[K comparable, E Delayed] []*node[K, E]

func (h nodeHeap[K, E]) Len() int { return len(h) }

func (h nodeHeap[K, E]) Less(i, j int) bool {
	di, dj := h[i].elem.Delay(), h[j].elem.Delay()
	if di != dj {
		return di < dj
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap[K, E]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap[K, E]) Push(x any) {
	n := x.(*node[K, E])
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap[K, E]) Pop() any {
	old := *h
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*h = old[:last]
	return n
}
