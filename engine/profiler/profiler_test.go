package profiler

import (
	"testing"
	"time"
)

func TestRecordLogsPerInterval(t *testing.T) {
	p := NewProfiler()
	p.SetInterval(time.Hour)

	for i := 0; i < 3; i++ {
		if p.Record(Stats{Label: "a", Blocks: 4, Bytes: 64, Duration: time.Millisecond}) {
			t.Fatalf("call %d logged before the interval elapsed", i)
		}
	}
	calls, bytes := p.Totals()
	if calls != 3 || bytes != 192 {
		t.Errorf("Totals = (%d, %d), want (3, 192)", calls, bytes)
	}

	p.SetInterval(0)
	if !p.Record(Stats{Label: "b", Blocks: 1, Bytes: 16, Reallocated: true}) {
		t.Error("Record with zero interval should log")
	}
	if p.calls != 0 || p.bytes != 0 || p.reallocations != 0 {
		t.Errorf("window not reset: calls=%d bytes=%d reallocations=%d", p.calls, p.bytes, p.reallocations)
	}
	if calls, _ := p.Totals(); calls != 4 {
		t.Errorf("total calls = %d, want 4", calls)
	}
}
