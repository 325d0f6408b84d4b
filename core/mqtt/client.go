package mqtt

import (
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

// Client represents an MQTT client capable of delivering schedules to the
// plant controller and waiting for its acknowledgment.
type Client interface {
	// PublishSchedule sends the schedule to the controller topic and returns
	// the command identifier used to track the acknowledgment.
	PublishSchedule(s *model.Schedule) (commandID string, err error)

	// WaitForAck waits for an acknowledgment for the provided command
	// identifier or until the timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)

	// Disconnect closes the connection to the broker.
	Disconnect()
}
