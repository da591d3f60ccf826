package metrics

import (
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gubarz/promptref/internal/codec/markdown"
)

const namespace = "promptref"

// Recorder publishes decoder and resolver counters. A nil *Recorder is a
// valid no-op recorder.
type Recorder struct {
	tokensIn   prom.Counter
	tokensOut  prom.Counter
	links      prom.Counter
	flushed    prom.Counter
	references *prom.CounterVec
	resolves   prom.Histogram
	rebuilds   prom.Counter
}

// NewRecorder constructs the metrics and registers them on reg. A nil reg
// gets a private registry.
func NewRecorder(reg prom.Registerer) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		tokensIn: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "decoder_tokens_in_total",
			Help:      "Atomic tokens fed to the markdown decoder",
		}),
		tokensOut: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "decoder_tokens_out_total",
			Help:      "Tokens emitted by the markdown decoder",
		}),
		links: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "decoder_links_total",
			Help:      "Markdown links recognized",
		}),
		flushed: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "decoder_flushed_candidates_total",
			Help:      "Link candidates re-emitted as plain tokens",
		}),
		references: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "references_total",
			Help:      "Resolved references by outcome",
		}, []string{"outcome"}),
		resolves: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Duration of full reference tree resolutions",
			Buckets:   prom.DefBuckets,
		}),
		rebuilds: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "watch_rebuilds_total",
			Help:      "Re-resolutions triggered by filesystem changes",
		}),
	}
	reg.MustRegister(r.tokensIn, r.tokensOut, r.links, r.flushed, r.references, r.resolves, r.rebuilds)
	return r
}

// ObserveDecoder adds the counters of one finished decoder
func (r *Recorder) ObserveDecoder(s markdown.Stats) {
	if r == nil {
		return
	}
	r.tokensIn.Add(float64(s.TokensIn))
	r.tokensOut.Add(float64(s.TokensOut))
	r.links.Add(float64(s.Links))
	r.flushed.Add(float64(s.FlushedCandidates))
}

// ObserveReference counts one resolved reference. outcome is "ok" or an
// error condition name.
func (r *Recorder) ObserveReference(outcome string) {
	if r == nil {
		return
	}
	r.references.WithLabelValues(outcome).Inc()
}

// ObserveResolve records the duration of a whole resolution in seconds
func (r *Recorder) ObserveResolve(seconds float64) {
	if r == nil {
		return
	}
	r.resolves.Observe(seconds)
}

func (r *Recorder) ObserveRebuild() {
	if r == nil {
		return
	}
	r.rebuilds.Inc()
}

// Handler serves the metrics gathered by g
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
