// Package metrics polls a gas sensor and exposes its readings as Prometheus
// gauges.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mklimuk/ags10/air"
)

// GasSensor is the reading surface the collector polls. *air.AGS10
// implements it.
type GasSensor interface {
	FirmwareVersion(ctx context.Context) (uint32, error)
	GasResistance(ctx context.Context) (uint32, error)
	Measure(ctx context.Context) (air.Reading, error)
}

const (
	readingVersion    = "version"
	readingResistance = "resistance"
	readingTVOC       = "tvoc"
)

type Opts struct {
	Namespace string
	Registry  *prometheus.Registry
	Labels    prometheus.Labels
}

type Opt func(*Opts)

func WithNamespace(ns string) Opt {
	return func(o *Opts) {
		o.Namespace = ns
	}
}

// WithRegistry registers the collector's metrics on an existing registry.
func WithRegistry(r *prometheus.Registry) Opt {
	return func(o *Opts) {
		o.Registry = r
	}
}

// WithLabels adds constant labels (e.g. the sensor address) to every metric.
func WithLabels(labels prometheus.Labels) Opt {
	return func(o *Opts) {
		o.Labels = labels
	}
}

// Collector owns the sensor while it runs: readings are taken from a single
// goroutine, one transaction at a time.
type Collector struct {
	sensor   GasSensor
	registry *prometheus.Registry

	tvoc       prometheus.Gauge
	resistance prometheus.Gauge
	version    prometheus.Gauge
	ready      prometheus.Gauge
	errors     *prometheus.CounterVec

	versionKnown bool
}

func NewCollector(sensor GasSensor, opts ...Opt) *Collector {
	o := Opts{Namespace: "ags10"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   o.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: o.Labels,
		})
	}
	c := &Collector{
		sensor:     sensor,
		registry:   o.Registry,
		tvoc:       gauge("tvoc_ppb", "Total volatile organic compounds (units: ppb)"),
		resistance: gauge("gas_resistance_ohms", "Gas sensing element resistance (units: ohm)"),
		version:    gauge("firmware_version", "Sensor firmware version"),
		ready:      gauge("ready", "1 when the sensor finished pre-heat, 0 otherwise"),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   o.Namespace,
			Name:        "read_errors_total",
			Help:        "Failed sensor reads by reading type",
			ConstLabels: o.Labels,
		}, []string{"reading"}),
	}
	o.Registry.MustRegister(c.tvoc, c.resistance, c.version, c.ready, c.errors)
	return c
}

// Poll performs one read cycle. The firmware version is read until it succeeds
// once; TVOC and gas resistance are read every cycle. A failed reading leaves
// its gauge at the previous value and increments the error counter.
func (c *Collector) Poll(ctx context.Context) {
	if !c.versionKnown {
		v, err := c.sensor.FirmwareVersion(ctx)
		if err != nil {
			c.fail(ctx, readingVersion, err)
		} else {
			c.version.Set(float64(v))
			c.versionKnown = true
		}
	}

	r, err := c.sensor.Measure(ctx)
	switch {
	case err != nil:
		c.fail(ctx, readingTVOC, err)
	case !r.Status.Ready():
		c.ready.Set(0)
		slog.InfoContext(ctx, "sensor pre-heating, tvoc sample skipped")
	default:
		c.ready.Set(1)
		c.tvoc.Set(float64(r.TVOC))
	}

	ohms, err := c.sensor.GasResistance(ctx)
	if err != nil {
		c.fail(ctx, readingResistance, err)
	} else {
		c.resistance.Set(float64(ohms))
	}
}

func (c *Collector) fail(ctx context.Context, reading string, err error) {
	c.errors.WithLabelValues(reading).Inc()
	slog.WarnContext(ctx, "sensor read failed", "reading", reading, "error", err)
}

// Run polls every interval until ctx is done.
func (c *Collector) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		c.Poll(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Handler serves the collector's registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
