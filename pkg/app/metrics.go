package app

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"github.com/womat/debug"
	"rc5rx/pkg/rc5"
)

// newMetrics registers the decoder counters. They are read from the decoder on every scrape.
func newMetrics(d *rc5.Decoder) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(collectors.NewGoCollector())

	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "rc5rx_frames_total",
		Help: "Number of decoded rc5 frames.",
	}, func() float64 { return float64(d.Stats().Frames) }))

	resets := map[string]func(rc5.Stats) uint64{
		"timing":  func(s rc5.Stats) uint64 { return s.TimingOutOfRange },
		"framing": func(s rc5.Stats) uint64 { return s.FramingInconsistency },
		"timeout": func(s rc5.Stats) uint64 { return s.SignalTimeout },
		"overrun": func(s rc5.Stats) uint64 { return s.FrameOverrun },
	}
	for reason, value := range resets {
		value := value
		reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name:        "rc5rx_resets_total",
			Help:        "Number of discarded partial frames or ignored edges by reason.",
			ConstLabels: prometheus.Labels{"reason": reason},
		}, func() float64 { return float64(value(d.Stats())) }))
	}

	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "rc5rx_receiver_enabled",
		Help: "1 if the receiver is enabled, 0 while the transmitter is active.",
	}, func() float64 {
		if d.Enabled() {
			return 1
		}
		return 0
	}))

	return reg
}

// HandleMetrics serves the registry in the prometheus text format.
func (app *App) HandleMetrics() fiber.Handler {
	h := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))

	return func(ctx *fiber.Ctx) error {
		debug.TraceLog.Print("web request metrics")

		h(ctx.Context())
		return nil
	}
}
