package xdelayq

import (
	"testing"
	"time"
)

func BenchmarkQueue_OfferPoll(b *testing.B) {
	q := NewComparable[fixedDelay]()
	i := 0
	for b.Loop() {
		q.Offer(fixedDelay(-(i % 1024)))
		q.Poll()
		i++
	}
}

func BenchmarkQueue_OfferDuplicate(b *testing.B) {
	q := NewDeferred[string]()
	e := After("dup", time.Hour)
	q.Offer(e)
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Offer(e)
		}
	})
}
