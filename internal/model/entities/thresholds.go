package entities

import "time"

// Thresholds holds the fixed automation parameters.
type Thresholds struct {
	MoistureChannel     int           `yaml:"moisture_channel"` // soil channel driving irrigation (0-based)
	MinSoilPercent      int           `yaml:"min_soil_percent"` // irrigate at or below
	IrrigationDuration  time.Duration `yaml:"irrigation_duration"`
	IrrigationCooldown  time.Duration `yaml:"irrigation_cooldown"`   // since last stop
	FertigationInterval time.Duration `yaml:"fertigation_interval"`  // unused by the rules
	FertigationDuration time.Duration `yaml:"fertigation_duration"`  // unused by the rules
	FanThresholdC       float64       `yaml:"fan_threshold_c"`       // fan on strictly above
	DisconnectedRaw     uint16        `yaml:"soil_disconnected_raw"` // raw strictly above means unplugged
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MoistureChannel:     1,
		MinSoilPercent:      0,
		IrrigationDuration:  5 * time.Second,
		IrrigationCooldown:  10 * time.Second,
		FertigationInterval: 300 * time.Second,
		FertigationDuration: 4 * time.Second,
		FanThresholdC:       36,
		DisconnectedRaw:     59000,
	}
}
