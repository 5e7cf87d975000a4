package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/riandyrn/otelchi"

	"github.com/signalsfoundry/aircraft-systems-simulator/core"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/avionics"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/electrical"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/environmental"
	"github.com/signalsfoundry/aircraft-systems-simulator/core/hydraulic"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/logging"
	"github.com/signalsfoundry/aircraft-systems-simulator/internal/observability"
)

// Server exposes the simulation engine over HTTP: display-data and alert
// reads plus cockpit control writes. Every control request is applied under
// the engine lock, so it never interleaves with a running frame.
type Server struct {
	log    logging.Logger
	engine *core.SimulationEngine
}

// NewRouter assembles the chi router with tracing, metrics, and request-id
// middleware. A nil collector skips the /metrics endpoint and its
// middleware.
func NewRouter(serviceName string, engine *core.SimulationEngine, log logging.Logger, collector *observability.SimCollector) *chi.Mux {
	if log == nil {
		log = logging.Noop()
	}
	s := &Server{log: log, engine: engine}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	if collector != nil {
		r.Use(collector.Middleware)
		r.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/snapshot", s.getSnapshot)
		r.Get("/aircraft", s.getAircraft)
		r.Put("/aircraft", s.putAircraft)
		r.Get("/alerts", s.getAlerts)
		r.Post("/alerts/{alertID}/acknowledge", s.acknowledgeAlert)

		r.Route("/electrical", func(r chi.Router) {
			r.Get("/", s.getElectrical)
			r.Post("/batteries/{name}/switch", s.setBatterySwitch)
			r.Post("/generators/{name}/breaker", s.setGeneratorBreaker)
			r.Post("/generators/{name}/fault", s.setGeneratorFault)
			r.Post("/inverters/{name}", s.setInverter)
			r.Post("/loads/{name}/breaker/reset", s.resetBreaker)
			r.Post("/ground-power", s.setGroundPower)
			r.Post("/rat", s.setElectricalRAT)
		})

		r.Route("/hydraulic", func(r chi.Router) {
			r.Get("/", s.getHydraulic)
			r.Post("/actuators/{name}/target", s.setActuatorTarget)
			r.Post("/pumps/{name}/switch", s.setElectricPump)
			r.Post("/pumps/{name}/fault", s.setPumpFault)
			r.Post("/circuits/{name}/leak", s.injectReservoirLeak)
			r.Post("/rat", s.setHydraulicRAT)
		})

		r.Route("/environmental", func(r chi.Router) {
			r.Get("/", s.getEnvironmental)
			r.Post("/packs/{name}/switch", s.setPack)
			r.Post("/packs/{name}/fault", s.setPackFault)
			r.Post("/zones/{name}/target", s.setZoneTarget)
			r.Post("/bleeds/{name}", s.setBleedSource)
			r.Post("/ground-air", s.setGroundAir)
			r.Post("/anti-ice/{name}", s.setAntiIce)
			r.Post("/oxygen/crew", s.setCrewOxygen)
			r.Post("/oxygen/masks", s.deployMasks)
		})

		r.Route("/avionics", func(r chi.Router) {
			r.Get("/", s.getAvionics)
			r.Post("/fms/plan", s.setFlightPlan)
			r.Post("/fms/direct-to", s.directTo)
			r.Post("/autopilot/engage", s.engageAutopilot)
			r.Post("/autopilot/modes", s.setAutopilotModes)
			r.Post("/autopilot/targets", s.setAutopilotTargets)
			r.Post("/radios/{name}/tune", s.tuneNavRadio)
			r.Post("/radios/{name}/obs", s.setOBSCourse)
			r.Post("/transponder", s.setTransponder)
			r.Post("/transponder/ident", s.identTransponder)
			r.Put("/traffic", s.setTraffic)
			r.Put("/weather", s.setWeather)
		})
	})

	return r
}

// requestIDMiddleware attaches a request id to the context and echoes it in
// the response for correlation.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, id := logging.EnsureRequestID(r.Context())
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error(ctx, "encode response failed", logging.String("error", err.Error()))
	}
}

func (s *Server) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error(ctx, "request failed", logging.String("error", err.Error()))
	} else {
		s.log.Warn(ctx, "request rejected", logging.String("error", err.Error()))
	}
	s.writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
}

// statusFromError maps subsystem sentinels onto HTTP status codes. Unknown
// entities read as 404, malformed inputs as 400.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, electrical.ErrUnknownEntity),
		errors.Is(err, hydraulic.ErrUnknownEntity),
		errors.Is(err, environmental.ErrUnknownEntity),
		errors.Is(err, avionics.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, avionics.ErrNoFlightPlan):
		return http.StatusConflict
	case errors.Is(err, electrical.ErrConfigInvalid),
		errors.Is(err, hydraulic.ErrConfigInvalid),
		errors.Is(err, environmental.ErrConfigInvalid),
		errors.Is(err, avionics.ErrConfigInvalid),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errBadRequest wraps request decoding and enum parsing failures.
var errBadRequest = errors.New("bad request")

func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
