package test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/bessopt/app"
	"github.com/kilianp07/bessopt/config"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/infra/mqtt"
)

const (
	scheduleTopic = "bess/schedule"
	ackTopic      = "bess/schedule/ack"
)

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
log_type notice
log_type information
connection_messages true
log_timestamp true
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	addr := net.JoinHostPort(host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Logf("mosquitto not ready at %s: %v", addr, err)
		t.Skip("Mosquitto not ready after retries")
	}
	return cont, broker
}

type scheduleOrder struct {
	CommandID string  `json:"command_id"`
	RunID     string  `json:"run_id"`
	PeakKW    float64 `json:"peak_kw"`
	TotalCost float64 `json:"total_cost"`
	Points    []struct {
		Step        int     `json:"step"`
		ChargeKW    float64 `json:"charge_kw"`
		DischargeKW float64 `json:"discharge_kw"`
		SocKWh      float64 `json:"soc_kwh"`
	} `json:"points"`
}

// connectController subscribes like the plant controller: it records each
// received schedule and immediately acknowledges it.
func connectController(broker string, t *testing.T, received chan<- scheduleOrder) paho.Client {
	t.Helper()
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("controller-sim")
	cli := paho.NewClient(opts)
	var connErr error
	time.Sleep(250 * time.Millisecond)
	for i := 0; i < 5; i++ {
		token := cli.Connect()
		token.Wait()
		connErr = token.Error()
		if connErr == nil {
			break
		}
		t.Logf("controller connect attempt %d to %s: %v", i+1, broker, connErr)
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if connErr != nil {
		t.Logf("controller connect failed to %s: %v", broker, connErr)
		t.Skip("Mosquitto not ready after retries")
	}
	if token := cli.Subscribe(scheduleTopic, 0, func(_ paho.Client, m paho.Message) {
		var order scheduleOrder
		if err := json.Unmarshal(m.Payload(), &order); err != nil {
			return
		}
		payload, _ := json.Marshal(map[string]string{"command_id": order.CommandID})
		cli.Publish(ackTopic, 0, false, payload)
		select {
		case received <- order:
		default:
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}
	return cli
}

func TestScheduleDeliveryWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	received := make(chan scheduleOrder, 1)
	ctrl := connectController(broker, t, received)
	defer ctrl.Disconnect(100)

	cfg := &config.Config{
		Battery: model.BatteryParams{PowerKW: 2, CapacityKWh: 8, Efficiency: 1, InitialSocFraction: 0.25},
		Tariff:  model.Tariff{PeakRate: 10, StepHours: 1},
		Solver:  config.SolverConfig{Tolerance: 1e-7, MaxSteps: 100},
		Store:   config.StoreConfig{Enabled: true, Path: filepath.Join(t.TempDir(), "runs.db")},
		MQTT: mqtt.Config{
			Broker:        broker,
			ClientID:      "optimizer",
			ScheduleTopic: scheduleTopic,
			AckTopic:      ackTopic,
		},
	}
	svc, err := app.New(cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() { _ = svc.Close() }()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	svc.Start(runCtx)

	series := model.Series{Demand: []float64{6}, Price: []float64{1}}
	sched, err := svc.Optimize(runCtx, cfg.Battery, cfg.Tariff, series)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if math.Abs(sched.TotalCost-44) > 1e-6 {
		t.Errorf("total cost = %v, want 44", sched.TotalCost)
	}

	select {
	case order := <-received:
		if order.RunID != sched.RunID {
			t.Errorf("run_id = %q, want %q", order.RunID, sched.RunID)
		}
		if order.CommandID == "" {
			t.Error("empty command id")
		}
		if len(order.Points) != 1 {
			t.Fatalf("points = %d, want 1", len(order.Points))
		}
		if math.Abs(order.Points[0].DischargeKW-2) > 1e-6 {
			t.Errorf("discharge = %v, want 2", order.Points[0].DischargeKW)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("controller received no schedule")
	}

	stored, err := svc.Store().GetRun(sched.RunID)
	if err != nil {
		t.Fatalf("stored run: %v", err)
	}
	if math.Abs(stored.TotalCost-sched.TotalCost) > 1e-9 {
		t.Errorf("stored cost = %v, want %v", stored.TotalCost, sched.TotalCost)
	}
}

func TestPublishAckRoundtripWithMQTTContainer(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	received := make(chan scheduleOrder, 1)
	ctrl := connectController(broker, t, received)
	defer ctrl.Disconnect(100)

	pub, err := mqtt.NewPahoClient(mqtt.Config{
		Broker:        broker,
		ClientID:      "publisher",
		ScheduleTopic: scheduleTopic,
		AckTopic:      ackTopic,
	})
	if err != nil {
		t.Fatalf("mqtt client: %v", err)
	}
	defer pub.Disconnect()

	sched := &model.Schedule{
		RunID:  "run-e2e",
		PeakKW: 4,
		Points: []model.SchedulePoint{{Step: 0, DischargeKW: 2, SocKWh: 2, NetGridKW: 4, EnergyCost: 4}},
	}
	cmdID, err := pub.PublishSchedule(sched)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	acked, err := pub.WaitForAck(cmdID, 5*time.Second)
	if err != nil {
		t.Fatalf("wait for ack: %v", err)
	}
	if !acked {
		t.Fatal("schedule not acknowledged")
	}
}
