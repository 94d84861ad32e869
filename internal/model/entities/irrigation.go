package entities

// IrrigationState tracks the automatic irrigation cycle.
// Active implies StartedAtMs is set and the irrigation output is energized.
type IrrigationState struct {
	Active          bool   `json:"active"`
	StartedAtMs     uint32 `json:"started_at_ms"`
	LastStoppedAtMs uint32 `json:"last_stopped_at_ms"`
	CycleID         string `json:"cycle_id,omitempty"`
}

// FertigationState mirrors IrrigationState for the fertigation pump,
// which is switched manually only.
type FertigationState struct {
	Active          bool   `json:"active"`
	StartedAtMs     uint32 `json:"started_at_ms"`
	LastStoppedAtMs uint32 `json:"last_stopped_at_ms"`
}
