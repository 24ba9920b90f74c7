package metrics

import (
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "novatable"

const (
	MetricAdmissions   = "admissions_total"
	MetricTasksQueued  = "tasks_queued_total"
	MetricTasksRun     = "tasks_run_total"
	MetricTaskPanics   = "task_panics_total"
	MetricRowErrors    = "task_row_errors_total"
	MetricQueueDepth   = "task_queue_depth"
	MetricQueryResults = "query_results_total"
)

// Metrics holds the collectors of one catalog. Each catalog owns its own
// registry so several catalogs can live in one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	admissions   *prometheus.CounterVec
	tasksQueued  prometheus.Counter
	tasksRun     prometheus.Counter
	taskPanics   prometheus.Counter
	rowErrors    prometheus.Counter
	queueDepth   prometheus.Gauge
	queryResults *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricAdmissions,
			Help:      "Scheduler admission decisions by query class and action.",
		}, []string{"class", "action"}),
		tasksQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTasksQueued,
			Help:      "Tasks pushed to the dispatcher queue.",
		}),
		tasksRun: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTasksRun,
			Help:      "Tasks run by dispatcher workers.",
		}),
		taskPanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricTaskPanics,
			Help:      "Tasks that panicked inside a worker.",
		}),
		rowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricRowErrors,
			Help:      "Tasks that stopped early on an error.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      MetricQueueDepth,
			Help:      "Tasks waiting in the dispatcher queue.",
		}),
		queryResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      MetricQueryResults,
			Help:      "Combined query results by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	m.Registry.MustRegister(
		m.admissions,
		m.tasksQueued,
		m.tasksRun,
		m.taskPanics,
		m.rowErrors,
		m.queueDepth,
		m.queryResults,
	)
	return m
}

func (m *Metrics) Admission(writer bool, action string) {
	if m == nil {
		return
	}
	class := "reader"
	if writer {
		class = "writer"
	}
	m.admissions.WithLabelValues(class, action).Inc()
}

func (m *Metrics) TaskQueued(depth int) {
	if m == nil {
		return
	}
	m.tasksQueued.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) TaskRun(depth int) {
	if m == nil {
		return
	}
	m.tasksRun.Inc()
	m.queueDepth.Set(float64(depth))
}

func (m *Metrics) TaskPanic() {
	if m == nil {
		return
	}
	m.taskPanics.Inc()
}

func (m *Metrics) RowError() {
	if m == nil {
		return
	}
	m.rowErrors.Inc()
}

func (m *Metrics) QueryResult(kind, outcome string) {
	if m == nil {
		return
	}
	m.queryResults.WithLabelValues(kind, outcome).Inc()
}

// Sample is one gathered counter or gauge value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Samples gathers every counter and gauge, sorted by name then labels.
func (m *Metrics) Samples() ([]Sample, error) {
	if m == nil {
		return nil, nil
	}
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			s := Sample{Name: mf.GetName(), Labels: labelString(metric.GetLabel())}
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = metric.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

// Render writes the gathered samples as a table.
func (m *Metrics) Render(w io.Writer) error {
	samples, err := m.Samples()
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Metric", "Labels", "Value"})
	for _, s := range samples {
		t.AppendRow(table.Row{s.Name, s.Labels, s.Value})
	}
	t.Render()
	return nil
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}
