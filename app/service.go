package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/core/events"
	"github.com/kilianp07/bessopt/core/lp"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	coremqtt "github.com/kilianp07/bessopt/core/mqtt"
	"github.com/kilianp07/bessopt/core/optimizer"
	"github.com/kilianp07/bessopt/infra/logger"
	"github.com/kilianp07/bessopt/infra/metrics"
	"github.com/kilianp07/bessopt/infra/mqtt"
	"github.com/kilianp07/bessopt/infra/simplex"
	"github.com/kilianp07/bessopt/infra/store"
	"github.com/kilianp07/bessopt/internal/eventbus"
)

const defaultAckTimeout = 5 * time.Second

// Service orchestrates the optimizer, run persistence, schedule delivery
// and metrics.
type Service struct {
	opt        *optimizer.Optimizer
	bus        eventbus.EventBus
	sink       coremetrics.MetricsSink
	store      *store.Store
	pub        coremqtt.Client
	ackTimeout time.Duration
	log        logger.Logger

	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration. The run store and the MQTT
// publisher are optional and only wired when configured.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	solver := simplex.New(simplex.WithTolerance(cfg.Solver.Tolerance))
	opt := optimizer.New(solver, optimizer.WithLogger(logger.New("optimizer")))

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	svc := &Service{
		opt:         opt,
		bus:         eventbus.New(),
		sink:        sink,
		ackTimeout:  defaultAckTimeout,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}
	if cfg.MQTT.AckTimeoutSeconds > 0 {
		svc.ackTimeout = time.Duration(cfg.MQTT.AckTimeoutSeconds) * time.Second
	}

	if cfg.Store.Enabled {
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("run store: %w", err)
		}
		svc.store = st
	}

	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.pub = client
	}

	return svc, nil
}

// Start launches the background observers. It returns immediately; the
// goroutines stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.sink != nil {
		metrics.StartEventCollector(ctx, s.bus, s.sink)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Optimize solves a schedule for the given plant and horizon, then persists
// and publishes it when those integrations are configured. Persistence and
// delivery failures are logged, not returned; the schedule is still usable.
func (s *Service) Optimize(ctx context.Context, batt model.BatteryParams, tariff model.Tariff, series model.Series) (*model.Schedule, error) {
	start := time.Now()
	sched, err := s.opt.Optimize(ctx, batt, tariff, series)
	if err != nil {
		s.publishFailure(err, time.Since(start))
		return nil, err
	}

	s.bus.Publish(events.RunCompletedEvent{Schedule: sched})

	if s.store != nil {
		if err := s.store.SaveRun(sched); err != nil {
			s.log.Errorf("save run %s: %v", sched.RunID, err)
		}
	}

	if s.pub != nil {
		s.deliver(sched)
	}

	return sched, nil
}

// publishFailure emits a RunFailedEvent for solver failures. Input
// validation errors never reach the solver and are not counted as runs.
func (s *Service) publishFailure(err error, elapsed time.Duration) {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return
	}
	status := lp.StatusError
	var nsErr *optimizer.NoSolutionError
	if errors.As(err, &nsErr) {
		status = nsErr.Status
	}
	s.bus.Publish(events.RunFailedEvent{Status: status, Err: err, Elapsed: elapsed})
}

// deliver pushes the schedule to the controller and waits for its ack.
func (s *Service) deliver(sched *model.Schedule) {
	commandID, err := s.pub.PublishSchedule(sched)
	if err != nil {
		s.log.Errorf("publish schedule %s: %v", sched.RunID, err)
		return
	}
	acked, err := s.pub.WaitForAck(commandID, s.ackTimeout)
	if err != nil {
		s.log.Warnf("schedule %s: %v", sched.RunID, err)
		return
	}
	if acked {
		s.log.Infof("schedule %s acknowledged by controller", sched.RunID)
	}
}

// Bus exposes the event bus for additional observers.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// Store returns the run store, or nil when persistence is disabled.
func (s *Service) Store() *store.Store { return s.store }

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Disconnect()
	}
	s.bus.Close()
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
