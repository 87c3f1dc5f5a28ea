package xbatch_test

import (
	"context"
	"fmt"
	"time"

	"github.com/omeyang/xcoord/pkg/queue/xbatch"
	"github.com/omeyang/xcoord/pkg/schedule/xsched"
)

func ExampleNew() {
	sched := xsched.New()
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	buffer, err := xbatch.NewFIFO[string](16)
	if err != nil {
		panic(err)
	}
	var handled []string
	p, err := xbatch.New(buffer, xbatch.HandlerFunc[string](func(_ context.Context, id string) error {
		handled = append(handled, id)
		return nil
	}), sched, xbatch.WithDelay(time.Hour))
	if err != nil {
		panic(err)
	}

	// 静默期内重复提交的元素只处理一次
	for _, id := range []string{"a", "b", "a"} {
		if err := p.Submit(id); err != nil {
			panic(err)
		}
	}
	fmt.Println("buffered:", p.Len(), p.State())

	// Shutdown 同步处理剩余元素
	if err := p.Shutdown(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println("handled:", handled)
	fmt.Println("processed:", p.Stats()[xbatch.CounterItemsProcessed])
	// Output:
	// buffered: 2 armed
	// handled: [a b]
	// processed: 2
}

func ExampleNewDelayed() {
	sched := xsched.New()
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	done := make(chan string, 1)
	p, err := xbatch.New(xbatch.NewDelayed[string](20*time.Millisecond),
		xbatch.HandlerFunc[string](func(_ context.Context, id string) error {
			done <- id
			return nil
		}), sched, xbatch.WithDelay(20*time.Millisecond))
	if err != nil {
		panic(err)
	}
	defer func() { _ = p.Shutdown(context.Background()) }()

	if err := p.Submit("job-1"); err != nil {
		panic(err)
	}
	fmt.Println("handled:", <-done)
	// Output:
	// handled: job-1
}

func ExampleProcessor_Health() {
	sched := xsched.New()
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	buffer, err := xbatch.NewFIFO[int](16)
	if err != nil {
		panic(err)
	}
	p, err := xbatch.New(buffer, xbatch.HandlerFunc[int](func(context.Context, int) error { return nil }),
		sched, xbatch.WithDelay(time.Hour), xbatch.WithAlertThreshold(2))
	if err != nil {
		panic(err)
	}
	defer func() { _ = p.Shutdown(context.Background()) }()

	for i := range 3 {
		_ = p.Submit(i)
	}
	h := p.Health()
	fmt.Println(h.Status, h.Depth, h.Threshold)

	p.SetAlertThreshold(10)
	fmt.Println(p.Health().Status)
	// Output:
	// unhealthy 3 2
	// healthy
}
