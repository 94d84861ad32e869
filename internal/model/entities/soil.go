package entities

// SoilSensor is one soil-moisture channel sample.
type SoilSensor struct {
	Channel      int    `json:"channel"`
	Raw          uint16 `json:"raw"`
	Percent      int    `json:"percent"`      // 0..100
	Disconnected bool   `json:"disconnected"` // raw above the disconnected threshold
}
