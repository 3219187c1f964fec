package temperature

import (
	"log/slog"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

// MQTTSubscriber interface for attaching message handlers
type MQTTSubscriber interface {
	SetMessageHandler(handler func(reading types.Reading) error)
}

// ReadingRecorder stores readings that did not arrive over HTTP.
type ReadingRecorder interface {
	Record(reading types.Reading) error
}

// registerMQTTHandler sets up the temperature module's MQTT message handler
func registerMQTTHandler(subscriber MQTTSubscriber, recorder ReadingRecorder, logger *slog.Logger) {
	subscriber.SetMessageHandler(func(reading types.Reading) error {
		logger.Debug("processing reading message",
			"room", reading.Room,
			"temperature", reading.Temperature,
		)

		if err := recorder.Record(reading); err != nil {
			logger.Error("failed to record reading",
				"room", reading.Room,
				"error", err,
			)
			return err
		}

		logger.Debug("successfully stored reading", "room", reading.Room)
		return nil
	})
}
