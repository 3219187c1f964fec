package temperature

import (
	"log/slog"
	"net/http"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/controller"
	"github.com/kubakubakuba/templogger/internal/modules/temperature/service"
)

// RegisterFeature mounts the temperature routes on mux and, when subscriber
// is non-nil, stores readings received over MQTT.
func RegisterFeature(mux *http.ServeMux, svc *service.Service, subscriber MQTTSubscriber, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	temperatureController := controller.NewTemperatureController(svc, logger)
	temperatureController.RegisterRoutes(mux)

	if subscriber != nil {
		registerMQTTHandler(subscriber, svc, logger)
	}
}
