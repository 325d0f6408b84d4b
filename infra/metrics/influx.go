package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/infra/logger"
)

// InfluxSink writes solve results to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client          influxdb2.Client
	writeAPI        api.WriteAPIBlocking
	log             logger.Logger
	recordSchedules bool
}

// NewInfluxSink creates a sink for the configured InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config) *InfluxSink {
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:          client,
		writeAPI:        client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:             logger.New("influx-sink"),
		recordSchedules: cfg.RecordSchedules,
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns
// a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes the run summary as a single point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("bess_solve").
		AddTag("run_id", ev.RunID).
		AddTag("status", ev.Status.String()).
		AddTag("component", "optimizer").
		AddField("steps", ev.Steps).
		AddField("total_cost", round3(ev.TotalCost)).
		AddField("energy_cost", round3(ev.EnergyCost)).
		AddField("demand_charge", round3(ev.DemandCharge)).
		AddField("peak_kw", round3(ev.PeakKW)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSchedule writes one point per schedule step when enabled in the
// config.
func (s *InfluxSink) RecordSchedule(ev coremetrics.ScheduleEvent) error {
	if !s.recordSchedules || ev.Schedule == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, pt := range ev.Schedule.Points {
		p := write.NewPointWithMeasurement("bess_schedule").
			AddTag("run_id", ev.RunID).
			AddTag("step", strconv.Itoa(pt.Step)).
			AddTag("component", "optimizer").
			AddField("charge_kw", round3(pt.ChargeKW)).
			AddField("discharge_kw", round3(pt.DischargeKW)).
			AddField("soc_kwh", round3(pt.SocKWh)).
			AddField("net_grid_kw", round3(pt.NetGridKW)).
			AddField("energy_cost", round3(pt.EnergyCost)).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
