package patch

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vango-dev/reconcile/pkg/vdom"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"), WithBuckets([]float64{0.001, 0.1}))

	m.recordCommand(vdom.CmdAppendEl)
	m.recordCommand(vdom.CmdAppendEl)
	m.recordCommand(vdom.CmdRemoveText)
	m.recordPass(5 * time.Millisecond)
	m.recordPlatformError("SetAttribute")
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.FramesSent(3)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"AppendEl", m.commandsTotal.WithLabelValues("AppendEl"), 2},
		{"RemoveText", m.commandsTotal.WithLabelValues("RemoveText"), 1},
		{"passes", m.passesTotal, 1},
		{"platform errors", m.platformErrors.WithLabelValues("SetAttribute"), 1},
		{"ws clients", m.wsClients, 1},
		{"frames", m.framesSent, 3},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(m.passDuration); n != 1 {
		t.Errorf("pass duration series = %d, want 1", n)
	}
	if n, err := testutil.GatherAndCount(reg, "test_commands_total"); err != nil || n != 2 {
		t.Errorf("GatherAndCount(test_commands_total) = %d, %v, want 2", n, err)
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.recordCommand(vdom.CmdPatchEl)
	m.recordPass(time.Second)
	m.recordPlatformError("InsertBefore")
	m.ClientConnected()
	m.ClientDisconnected()
	m.FramesSent(1)
}

func TestMetricsConfigDefaults(t *testing.T) {
	c := defaultMetricsConfig()
	if c.Namespace != "reconcile" {
		t.Errorf("Namespace = %q, want reconcile", c.Namespace)
	}
	if c.Registry != prometheus.DefaultRegisterer {
		t.Error("Registry should default to prometheus.DefaultRegisterer")
	}

	labels := prometheus.Labels{"doc": "a"}
	for _, opt := range []MetricsOption{WithSubsystem("patch"), WithConstLabels(labels)} {
		opt(&c)
	}
	if c.Subsystem != "patch" || c.ConstLabels["doc"] != "a" {
		t.Errorf("config = %+v, want subsystem patch and doc label", c)
	}
}
