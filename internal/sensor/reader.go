// Package sensor turns the raw peripherals into calibrated readings.
package sensor

import (
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

// ClimateProbe measures air temperature (°C) and relative humidity (%).
type ClimateProbe interface {
	Read() (tempC, rh float64, err error)
}

type LightMeter interface {
	ReadLux() (float64, error)
}

// SoilADC returns the raw 0..65535 value of an analog soil channel.
type SoilADC interface {
	ReadRaw(channel int) (uint16, error)
}

const (
	NameClimate = "sht30"
	NameLight   = "bh1750"
)

func soilName(ch int) string { return fmt.Sprintf("soil%d", ch+1) }

// Options configures a Reader. A zero BreakerFailures disables the breakers.
type Options struct {
	Channels        int
	Calibration     Calibration
	DisconnectedRaw uint16
	BreakerFailures int
	BreakerOpen     time.Duration
}

// Reader reads every sensor through its own circuit breaker, so a dead probe
// fails fast instead of costing a bus timeout on every call.
type Reader struct {
	climate         ClimateProbe
	light           LightMeter
	soil            SoilADC
	cal             Calibration
	disconnectedRaw uint16
	channels        int
	breakers        map[string]*gobreaker.CircuitBreaker
}

func NewReader(climate ClimateProbe, light LightMeter, soil SoilADC, opts Options) *Reader {
	if opts.Channels <= 0 {
		opts.Channels = 3
	}
	r := &Reader{
		climate:         climate,
		light:           light,
		soil:            soil,
		cal:             opts.Calibration,
		disconnectedRaw: opts.DisconnectedRaw,
		channels:        opts.Channels,
		breakers:        map[string]*gobreaker.CircuitBreaker{},
	}
	if opts.BreakerFailures > 0 {
		names := []string{NameClimate, NameLight}
		for ch := 0; ch < opts.Channels; ch++ {
			names = append(names, soilName(ch))
		}
		for _, n := range names {
			r.breakers[n] = mkCB(n, opts.BreakerFailures, opts.BreakerOpen)
		}
	}
	return r
}

func mkCB(name string, fails int, open time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: open,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
	})
}

func (r *Reader) Channels() int { return r.channels }

func (r *Reader) Calibration() Calibration { return r.cal }

func (r *Reader) ReadTemperatureHumidity() (float64, float64, error) {
	type climate struct{ t, rh float64 }
	v, err := r.guard(NameClimate, "read", func() (interface{}, error) {
		t, rh, err := r.climate.Read()
		return climate{t, rh}, err
	})
	if err != nil {
		return 0, 0, err
	}
	c := v.(climate)
	return c.t, c.rh, nil
}

func (r *Reader) ReadLux() (float64, error) {
	v, err := r.guard(NameLight, "read", func() (interface{}, error) {
		return r.light.ReadLux()
	})
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (r *Reader) ReadSoilRaw(channel int) (uint16, error) {
	name := soilName(channel)
	if channel < 0 || channel >= r.channels {
		return 0, &SensorIOError{Sensor: name, Op: "read", Err: fmt.Errorf("channel out of range 0..%d", r.channels-1)}
	}
	v, err := r.guard(name, "read", func() (interface{}, error) {
		return r.soil.ReadRaw(channel)
	})
	if err != nil {
		return 0, err
	}
	return v.(uint16), nil
}

// ReadSoil reads a channel and calibrates it. A raw value above the
// disconnected threshold reports 0 % with Disconnected set.
func (r *Reader) ReadSoil(channel int) (entities.SoilSensor, error) {
	raw, err := r.ReadSoilRaw(channel)
	if err != nil {
		return entities.SoilSensor{Channel: channel}, err
	}
	s := entities.SoilSensor{Channel: channel, Raw: raw}
	if raw > r.disconnectedRaw {
		s.Disconnected = true
		return s, nil
	}
	s.Percent = r.cal.Percent(raw)
	return s, nil
}

func (r *Reader) guard(name, op string, fn func() (interface{}, error)) (interface{}, error) {
	var (
		v   interface{}
		err error
	)
	if cb, ok := r.breakers[name]; ok {
		v, err = cb.Execute(fn)
	} else {
		v, err = fn()
	}
	if err != nil {
		return nil, &SensorIOError{Sensor: name, Op: op, Err: err}
	}
	return v, nil
}
