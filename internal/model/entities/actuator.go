package entities

// Actuator names one of the three binary outputs.
type Actuator string

const (
	Irrigation  Actuator = "irrigation"
	Fertigation Actuator = "fertigation"
	Fan         Actuator = "fan"
)

// Actuators lists every output in status-bar order.
var Actuators = []Actuator{Fan, Irrigation, Fertigation}

// ActuatorState is the logical state of an output, independent of line polarity.
type ActuatorState string

const (
	StateOff ActuatorState = "off"
	StateOn  ActuatorState = "on"
)

func StateOf(on bool) ActuatorState {
	if on {
		return StateOn
	}
	return StateOff
}

func (s ActuatorState) On() bool { return s == StateOn }
