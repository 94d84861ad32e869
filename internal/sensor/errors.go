package sensor

import "fmt"

// SensorIOError reports a failed transfer or a malformed response.
type SensorIOError struct {
	Sensor string
	Op     string
	Err    error
}

func (e *SensorIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Sensor, e.Op, e.Err)
}

func (e *SensorIOError) Unwrap() error { return e.Err }
