package xoverflow

import (
	"context"
	"errors"
	"sync"
)

var errInjected = errors.New("injected")

// mapDelegate 是记录调用的内存委托缓存。
type mapDelegate struct {
	mu       sync.Mutex
	m        map[string]int
	order    []string
	puts     int
	contains int
	closes   int
	putErr   error
	closeErr error
	lenErr   error
	created  func(string, int)
}

func newMapDelegate() *mapDelegate {
	return &mapDelegate{m: make(map[string]int)}
}

func (d *mapDelegate) Get(_ context.Context, k string) (int, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.m[k]
	return v, ok, nil
}

func (d *mapDelegate) Put(_ context.Context, k string, v int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.putErr != nil {
		return d.putErr
	}
	d.puts++
	if _, ok := d.m[k]; !ok {
		d.order = append(d.order, k)
	}
	d.m[k] = v
	return nil
}

func (d *mapDelegate) Remove(_ context.Context, k string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.m[k]; !ok {
		return false, nil
	}
	delete(d.m, k)
	for i, o := range d.order {
		if o == k {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (d *mapDelegate) Contains(_ context.Context, k string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.contains++
	_, ok := d.m[k]
	return ok, nil
}

func (d *mapDelegate) Range(_ context.Context, fn func(string, int) bool) error {
	d.mu.Lock()
	keys := append([]string(nil), d.order...)
	vals := make([]int, len(keys))
	for i, k := range keys {
		vals[i] = d.m[k]
	}
	d.mu.Unlock()
	for i, k := range keys {
		if !fn(k, vals[i]) {
			return nil
		}
	}
	return nil
}

func (d *mapDelegate) Len(context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lenErr != nil {
		return 0, d.lenErr
	}
	return len(d.m), nil
}

func (d *mapDelegate) Clear(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m = make(map[string]int)
	d.order = nil
	return nil
}

func (d *mapDelegate) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return d.closeErr
}

func (d *mapDelegate) OnCreated(fn func(string, int)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.created = fn
}

func (d *mapDelegate) snapshot() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.m))
	for k, v := range d.m {
		out[k] = v
	}
	return out
}
