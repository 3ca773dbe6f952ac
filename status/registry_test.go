package status

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricMapCachesPointer(t *testing.T) {
	reg := NewRegistry()
	a := reg.Ints.Get("engine.ticks")
	b := reg.Ints.Get("engine.ticks")
	if a != b {
		t.Error("Expected Get to return the cached pointer")
	}
	a.Add(3)
	if reg.Ints.Get("engine.ticks").Load() != 3 {
		t.Error("Expected writes through cached pointer to be visible")
	}
}

func TestConcurrentRegistration(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Ints.Get("game.kills").Add(1)
			}
		}()
	}
	wg.Wait()
	if got := reg.Ints.Get("game.kills").Load(); got != 800 {
		t.Errorf("Expected 800, got %d", got)
	}
	if reg.Ints.Count() != 1 {
		t.Errorf("Expected 1 metric, got %d", reg.Ints.Count())
	}
}

func TestAtomicFloat(t *testing.T) {
	var f AtomicFloat
	f.Set(1.5)
	if got := f.Add(0.25); got != 1.75 {
		t.Errorf("Expected 1.75, got %v", got)
	}
}

func TestSnapshotAndCollector(t *testing.T) {
	reg := NewRegistry()
	reg.Ints.Get("engine.ticks").Store(42)
	reg.Floats.Get("render.fps").Set(30)
	reg.Bools.Get("game.paused").Store(true)

	snap := reg.Snapshot()
	if snap["engine.ticks"] != 42 || snap["render.fps"] != 30 || snap["game.paused"] != 1 {
		t.Errorf("Unexpected snapshot %v", snap)
	}

	c := NewCollector(reg, "voidstriker")
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if n := testutil.CollectAndCount(c); n != 3 {
		t.Errorf("Expected 3 metrics, got %d", n)
	}

	expected := `
# HELP voidstriker_engine_ticks game status engine.ticks
# TYPE voidstriker_engine_ticks gauge
voidstriker_engine_ticks 42
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "voidstriker_engine_ticks"); err != nil {
		t.Errorf("Unexpected collector output: %v", err)
	}
}
