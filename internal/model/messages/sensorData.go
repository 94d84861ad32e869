package messages

import (
	"time"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

// SensorData is one snapshot of every reading plus the output states.
// Climate fields are omitted when the probe could not be read.
type SensorData struct {
	AtMs        uint32                 `json:"at_ms"`
	Soil        []entities.SoilSensor  `json:"soil"`
	Temperature *float64               `json:"temperature_c,omitempty"`
	Humidity    *float64               `json:"humidity_pct,omitempty"`
	Lux         *float64               `json:"lux,omitempty"`
	Irrigation  entities.ActuatorState `json:"irrigation"`
	Fertigation entities.ActuatorState `json:"fertigation"`
	Fan         entities.ActuatorState `json:"fan"`
	Timestamp   time.Time              `json:"timestamp"`
}
