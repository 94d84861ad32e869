package messages

import (
	"time"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

// Source tells who switched an actuator.
type Source string

const (
	SourceAuto   Source = "auto"
	SourceManual Source = "manual"
)

// StatusChanged is emitted after an actuator changes state.
type StatusChanged struct {
	Actuator  entities.Actuator      `json:"actuator"`
	NewState  entities.ActuatorState `json:"new_state"`
	Source    Source                 `json:"source"`
	CycleID   string                 `json:"cycle_id,omitempty"`
	AtMs      uint32                 `json:"at_ms"`
	Timestamp time.Time              `json:"timestamp"`
}
