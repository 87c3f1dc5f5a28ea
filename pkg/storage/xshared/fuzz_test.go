package xshared

import "testing"

// FuzzFlightKey 检查 flightKey 对同类型共享键是单射：键相等当且仅当原值相等。
func FuzzFlightKey(f *testing.F) {
	f.Add("a", "a", int64(1), int64(1))
	f.Add("a", "b", int64(1), int64(-1))
	f.Add(`"a"`, "a", int64(0), int64(1<<40))
	f.Add("\xff", "\\xff", int64(-7), int64(7))
	f.Add("`", "\"`\"", int64(10), int64(16))

	f.Fuzz(func(t *testing.T, a, b string, x, y int64) {
		if got, want := flightKey(a) == flightKey(b), a == b; got != want {
			t.Fatalf("flightKey(%q) == flightKey(%q) is %v, want %v", a, b, got, want)
		}
		if got, want := flightKey(x) == flightKey(y), x == y; got != want {
			t.Fatalf("flightKey(%d) == flightKey(%d) is %v, want %v", x, y, got, want)
		}
	})
}
