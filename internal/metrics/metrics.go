package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tictactoe"

const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// Metrics groups the game counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	aiMoves       *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec
	rejectedMoves *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	that := &Metrics{
		registry: registry,
		aiMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_moves_total",
			Help:      "AI moves by source of the chosen cell.",
		}, []string{"source"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Finished games by mode and result.",
		}, []string{"mode", "result"}),
		rejectedMoves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_moves_total",
			Help:      "Human moves rejected by the controller.",
		}, []string{"reason"}),
	}

	registry.MustRegister(that.aiMoves, that.gamesFinished, that.rejectedMoves)

	return that
}

func (that *Metrics) AIMove(source string) {
	if that == nil {
		return
	}
	that.aiMoves.WithLabelValues(source).Inc()
}

func (that *Metrics) GameFinished(mode, result string) {
	if that == nil {
		return
	}
	that.gamesFinished.WithLabelValues(mode, result).Inc()
}

func (that *Metrics) MoveRejected(reason string) {
	if that == nil {
		return
	}
	that.rejectedMoves.WithLabelValues(reason).Inc()
}

func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.registry, promhttp.HandlerOpts{Registry: that.registry})
}
