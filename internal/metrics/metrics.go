package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Intervention metrics
	InterventionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsfix_interventions_total",
			Help: "Total completed intervention sessions",
		},
		[]string{"app", "outcome"}, // outcome: "proceeded" or "turnaround"
	)

	BreathingSecondsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dsfix_breathing_seconds_total",
			Help: "Total seconds spent in the breathing phase",
		},
	)

	// Reprompt metrics
	RepromptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsfix_reprompts_total",
			Help: "Total reprompt triggers that re-locked an unlocked view",
		},
		[]string{"trigger"}, // "scroll", "timer", "visibility"
	)

	UnlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsfix_unlocks_total",
			Help: "Total successful passes through the overlay",
		},
		[]string{"domain"},
	)

	// Time tracking
	UnlockedSecondsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dsfix_unlocked_seconds_total",
			Help: "Seconds spent on a monitored domain while unlocked",
		},
		[]string{"domain"},
	)
)

func init() {
	prometheus.MustRegister(
		InterventionsTotal,
		BreathingSecondsTotal,
		RepromptsTotal,
		UnlocksTotal,
		UnlockedSecondsTotal,
	)
}

// Server exposes the /metrics endpoint.
type Server struct {
	addr     string
	server   *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// NewServer creates a metrics server bound to addr.
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr:   addr,
		server: &http.Server{Handler: mux},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Start begins serving metrics in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()

	s.logger.Info().Str("addr", s.addr).Msg("Metrics server started")
	return nil
}

// Stop shuts the metrics server down.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
