package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestUpstreamRequestCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.UpstreamRequest("/api/v2/monitor/system/dhcp", "ok")
	m.UpstreamRequest("/api/v2/monitor/system/dhcp", "ok")
	m.UpstreamRequest("/api/v2/monitor/system/dhcp", "rate_limited")

	got := testutil.ToFloat64(m.upstreamRequests.WithLabelValues("/api/v2/monitor/system/dhcp", "ok"))
	if got != 2 {
		t.Errorf("ok requests = %v, want 2", got)
	}
	got = testutil.ToFloat64(m.upstreamRequests.WithLabelValues("/api/v2/monitor/system/dhcp", "rate_limited"))
	if got != 1 {
		t.Errorf("rate_limited requests = %v, want 1", got)
	}
}

func TestCacheHitCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ResponseCacheHit("/api/v2/monitor/system/arp")
	if got := testutil.ToFloat64(m.cacheHits.WithLabelValues("/api/v2/monitor/system/arp")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
}

func TestCycleCompleteGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CycleComplete(4, 37, 250*time.Millisecond)

	expected := `
# HELP switchscope_switches Switches in the last assembled topology.
# TYPE switchscope_switches gauge
switchscope_switches 4
# HELP switchscope_connected_devices Connected devices in the last assembled topology.
# TYPE switchscope_connected_devices gauge
switchscope_connected_devices 37
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"switchscope_switches", "switchscope_connected_devices")
	if err != nil {
		t.Errorf("gauge mismatch: %v", err)
	}

	if got := testutil.CollectAndCount(m.cycleDuration); got != 1 {
		t.Errorf("histogram series = %d, want 1", got)
	}
}

func TestRegistersWithoutCollision(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("duplicate registration: %v", r)
		}
	}()
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
