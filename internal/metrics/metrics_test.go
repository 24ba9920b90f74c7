package metrics

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func find(samples []Sample, name, labels string) (float64, bool) {
	for _, s := range samples {
		if s.Name == name && s.Labels == labels {
			return s.Value, true
		}
	}
	return 0, false
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Admission(true, "run")
	m.TaskQueued(1)
	m.TaskRun(0)
	m.TaskPanic()
	m.RowError()
	m.QueryResult("UPDATE", "ok")

	samples, err := m.Samples()
	require.NoError(t, err)
	require.Empty(t, samples)
}

func TestMetrics_Samples(t *testing.T) {
	m := New()
	m.Admission(true, "run")
	m.Admission(false, "run")
	m.Admission(false, "run")
	m.Admission(true, "enqueue")
	m.TaskQueued(3)
	m.TaskRun(2)
	m.RowError()
	m.QueryResult("UPDATE", "partial")

	samples, err := m.Samples()
	require.NoError(t, err)

	v, ok := find(samples, "novatable_admissions_total", "action=run,class=reader")
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	v, ok = find(samples, "novatable_admissions_total", "action=enqueue,class=writer")
	require.True(t, ok)
	require.Equal(t, 1.0, v)

	v, ok = find(samples, "novatable_task_queue_depth", "")
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	v, ok = find(samples, "novatable_query_results_total", "kind=UPDATE,outcome=partial")
	require.True(t, ok)
	require.Equal(t, 1.0, v)
}

func TestMetrics_Render(t *testing.T) {
	m := New()
	m.TaskQueued(1)

	var buf bytes.Buffer
	require.NoError(t, m.Render(&buf))
	require.Contains(t, buf.String(), "novatable_tasks_queued_total")
}
