// Package metrics exposes Prometheus collectors for quizzes, chat and
// model calls.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cadet"

// Metrics owns a private registry so tests and multiple servers do not
// collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	generations *prometheus.CounterVec
	parsed      *prometheus.CounterVec
	completed   prometheus.Counter
	score       prometheus.Histogram
	chat        prometheus.Counter
	llmSeconds  *prometheus.HistogramVec
}

// New registers every collector, including the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "generations_total",
			Help:      "Quiz generation attempts by outcome.",
		}, []string{"outcome"}),
		parsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "questions_parsed_total",
			Help:      "Question blocks parsed from model output, by result.",
		}, []string{"result"}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "completed_total",
			Help:      "Quizzes finished by cadets.",
		}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quiz",
			Name:      "score_percent",
			Help:      "Final quiz scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		chat: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "questions_total",
			Help:      "Questions answered by the assistant.",
		}),
		llmSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_seconds",
			Help:      "Model request latency by purpose.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"purpose"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.generations,
		m.parsed,
		m.completed,
		m.score,
		m.chat,
		m.llmSeconds,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// GenerationFinished counts one quiz generation.
func (m *Metrics) GenerationFinished(outcome string) {
	m.generations.WithLabelValues(outcome).Inc()
}

// BlocksParsed counts accepted and dropped question blocks.
func (m *Metrics) BlocksParsed(valid, dropped int) {
	m.parsed.WithLabelValues("valid").Add(float64(valid))
	m.parsed.WithLabelValues("dropped").Add(float64(dropped))
}

// ObserveLLMRequest records the latency of one model call.
func (m *Metrics) ObserveLLMRequest(purpose string, seconds float64) {
	m.llmSeconds.WithLabelValues(purpose).Observe(seconds)
}

// QuizCompleted records a finished quiz and its score.
func (m *Metrics) QuizCompleted(score float64) {
	m.completed.Inc()
	m.score.Observe(score)
}

// ChatAsked counts one answered chat question.
func (m *Metrics) ChatAsked() {
	m.chat.Inc()
}
