package promsink

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/metricweave/pkg/instrument"
)

func gatherNames(t *testing.T, reg *prom.Registry) map[string]bool {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestRecordHistogram_RegistersAndObserves(t *testing.T) {
	reg := prom.NewRegistry()
	sink := New(reg)

	sink.RecordHistogram("svc_create_user_duration_seconds", 0.2,
		instrument.LabelSet{{Key: "result", Value: "ok"}})

	names := gatherNames(t, reg)
	require.True(t, names["svc_create_user_duration_seconds"])
}

func TestIncrementCounter_RegistersAndCounts(t *testing.T) {
	reg := prom.NewRegistry()
	sink := New(reg)

	sink.IncrementCounter("svc_create_user_total",
		instrument.LabelSet{{Key: "result", Value: "err"}})
	sink.IncrementCounter("svc_create_user_total",
		instrument.LabelSet{{Key: "result", Value: "err"}})

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	metrics := families[0].GetMetric()
	require.Len(t, metrics, 1)
	require.InDelta(t, 2.0, metrics[0].GetCounter().GetValue(), 1e-9)
	require.Equal(t, "result", metrics[0].GetLabel()[0].GetName())
	require.Equal(t, "err", metrics[0].GetLabel()[0].GetValue())
}

func TestEmission_EmptyLabelSet_Works(t *testing.T) {
	reg := prom.NewRegistry()
	sink := New(reg)

	sink.RecordHistogram("bare_duration_seconds", 0.01, nil)
	sink.IncrementCounter("bare_total", nil)

	names := gatherNames(t, reg)
	require.True(t, names["bare_duration_seconds"])
	require.True(t, names["bare_total"])
}

func TestRecordHistogram_SameNameReusesVector(t *testing.T) {
	reg := prom.NewRegistry()
	sink := New(reg)

	labels := instrument.LabelSet{{Key: "result", Value: "ok"}}
	sink.RecordHistogram("op_duration_seconds", 0.1, labels)
	sink.RecordHistogram("op_duration_seconds", 0.3, labels)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	require.EqualValues(t, 2, families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestMismatchedLabels_DroppedBestEffort(t *testing.T) {
	reg := prom.NewRegistry()
	sink := New(reg)

	sink.IncrementCounter("op_total", instrument.LabelSet{{Key: "result", Value: "ok"}})
	// Different key shape for the same name must not panic the call path.
	sink.IncrementCounter("op_total", instrument.LabelSet{{Key: "status", Value: "200"}})

	_, err := reg.Gather()
	require.NoError(t, err)
}

func TestNew_NilRegisterer_UsesDefault(t *testing.T) {
	require.NotNil(t, New(nil))
}
