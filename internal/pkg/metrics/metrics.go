package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "mitr"

// Metrics groups the collectors shared by the API server and the Telegram bot.
type Metrics struct {
	fetchAttempts *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	playback      *prometheus.CounterVec
	chatAnswers   *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Outbound request attempts by backend, endpoint and outcome.",
		}, []string{"backend", "endpoint", "outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Resolved session transitions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		playback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playback_total",
			Help:      "Audio playback requests by outcome.",
		}, []string{"outcome"}),
		chatAnswers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_answers_total",
			Help:      "Chat answers by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.fetchAttempts, m.transitions, m.playback, m.chatAnswers} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	return m, nil
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// FetchObserver returns a callback for pkg/http attempt notifications.
func (m *Metrics) FetchObserver(backend string) func(endpoint string, attempt uint, err error) {
	return func(endpoint string, _ uint, err error) {
		if m == nil {
			return
		}
		m.fetchAttempts.WithLabelValues(backend, endpoint, outcome(err)).Inc()
	}
}

func (m *Metrics) Transition(operation, result string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) Playback(result string) {
	if m == nil {
		return
	}
	m.playback.WithLabelValues(result).Inc()
}

func (m *Metrics) ChatAnswer(result string) {
	if m == nil {
		return
	}
	m.chatAnswers.WithLabelValues(result).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
