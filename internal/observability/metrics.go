package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SimCollector bundles Prometheus metrics for the simulation core and the
// HTTP API surface.
type SimCollector struct {
	gatherer prometheus.Gatherer

	FrameDuration prometheus.Histogram
	FramesTotal   prometheus.Counter

	BusesPowered      prometheus.Gauge
	CircuitPressure   *prometheus.GaugeVec
	CabinAltitude     prometheus.Gauge
	CabinDifferential prometheus.Gauge
	ActiveAlerts      *prometheus.GaugeVec

	APIRequests  *prometheus.CounterVec
	APIDurations *prometheus.HistogramVec
}

// NewSimCollector registers simulation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frameDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_frame_duration_seconds",
		Help:    "Wall-clock duration of one simulation frame.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})
	frameDuration, err := registerHistogram(reg, frameDuration, "sim_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	frames := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_frames_total",
		Help: "Cumulative number of simulation frames executed.",
	})
	frames, err = registerCounter(reg, frames, "sim_frames_total")
	if err != nil {
		return nil, err
	}

	busesPowered, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_electrical_buses_powered",
		Help: "Number of electrical buses currently powered.",
	}), "sim_electrical_buses_powered")
	if err != nil {
		return nil, err
	}

	circuitPressure := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_hydraulic_pressure_psi",
		Help: "Hydraulic circuit pressure, labeled by circuit.",
	}, []string{"circuit"})
	circuitPressure, err = registerGaugeVec(reg, circuitPressure, "sim_hydraulic_pressure_psi")
	if err != nil {
		return nil, err
	}

	cabinAltitude, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_cabin_altitude_ft",
		Help: "Current cabin pressure altitude in feet.",
	}), "sim_cabin_altitude_ft")
	if err != nil {
		return nil, err
	}

	cabinDifferential, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_cabin_differential_psi",
		Help: "Current cabin differential pressure in PSI.",
	}), "sim_cabin_differential_psi")
	if err != nil {
		return nil, err
	}

	activeAlerts := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_active_alerts",
		Help: "Active alerts across all subsystems, labeled by severity.",
	}, []string{"level"})
	activeAlerts, err = registerGaugeVec(reg, activeAlerts, "sim_active_alerts")
	if err != nil {
		return nil, err
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of handled API requests, labeled by method, route, and status code.",
	}, []string{"method", "route", "code"})
	requests, err = registerCounterVec(reg, requests, "api_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"})
	durations, err = registerHistogramVec(reg, durations, "api_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:          gatherer,
		FrameDuration:     frameDuration,
		FramesTotal:       frames,
		BusesPowered:      busesPowered,
		CircuitPressure:   circuitPressure,
		CabinAltitude:     cabinAltitude,
		CabinDifferential: cabinDifferential,
		ActiveAlerts:      activeAlerts,
		APIRequests:       requests,
		APIDurations:      durations,
	}, nil
}

// ObserveFrame records one executed frame and its duration.
func (c *SimCollector) ObserveFrame(d time.Duration) {
	if c == nil {
		return
	}
	if c.FrameDuration != nil {
		c.FrameDuration.Observe(d.Seconds())
	}
	if c.FramesTotal != nil {
		c.FramesTotal.Inc()
	}
}

// SetBusesPowered updates the powered-bus gauge.
func (c *SimCollector) SetBusesPowered(count int) {
	if c == nil || c.BusesPowered == nil {
		return
	}
	c.BusesPowered.Set(float64(count))
}

// SetCircuitPressure updates one circuit's pressure gauge.
func (c *SimCollector) SetCircuitPressure(circuit string, psi float64) {
	if c == nil || c.CircuitPressure == nil {
		return
	}
	c.CircuitPressure.WithLabelValues(circuit).Set(psi)
}

// SetCabin updates the pressurization gauges.
func (c *SimCollector) SetCabin(altitudeFt, differentialPSI float64) {
	if c == nil {
		return
	}
	if c.CabinAltitude != nil {
		c.CabinAltitude.Set(altitudeFt)
	}
	if c.CabinDifferential != nil {
		c.CabinDifferential.Set(differentialPSI)
	}
}

// SetActiveAlerts updates the alert gauge for one severity level.
func (c *SimCollector) SetActiveAlerts(level string, count int) {
	if c == nil || c.ActiveAlerts == nil {
		return
	}
	c.ActiveAlerts.WithLabelValues(level).Set(float64(count))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Middleware records request counts and durations for the HTTP API, labeled
// by the matched chi route pattern.
func (c *SimCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c == nil {
			return
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		if c.APIRequests != nil {
			c.APIRequests.WithLabelValues(r.Method, route, fmt.Sprintf("%d", rec.status)).Inc()
		}
		if c.APIDurations != nil {
			c.APIDurations.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
