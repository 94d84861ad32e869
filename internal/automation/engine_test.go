package automation

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MateoEspitia-dev/greenhouse/internal/actuator"
	"github.com/MateoEspitia-dev/greenhouse/internal/clock"
	"github.com/MateoEspitia-dev/greenhouse/internal/metrics"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/messages"
	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
)

type fakeSensors struct {
	percent  int
	soilErr  error
	temp     float64
	tempErr  error
	soilRead int
}

func (f *fakeSensors) ReadSoil(ch int) (entities.SoilSensor, error) {
	f.soilRead++
	if f.soilErr != nil {
		return entities.SoilSensor{Channel: ch}, f.soilErr
	}
	return entities.SoilSensor{Channel: ch, Raw: 56000, Percent: f.percent}, nil
}

func (f *fakeSensors) ReadTemperatureHumidity() (float64, float64, error) {
	return f.temp, 50, f.tempErr
}

type fakeLine struct {
	level int
	err   error
}

func (l *fakeLine) SetValue(v int) error {
	if l.err != nil {
		return l.err
	}
	l.level = v
	return nil
}

type rig struct {
	engine  *Engine
	sensors *fakeSensors
	clock   *clock.Manual
	irr     *fakeLine
	fer     *fakeLine
	fan     *fakeLine
	events  []messages.StatusChanged
}

func newRig(t *testing.T, start uint32) *rig {
	r := &rig{
		sensors: &fakeSensors{percent: 40, temp: 25},
		clock:   clock.NewManual(start),
		irr:     &fakeLine{},
		fer:     &fakeLine{},
		fan:     &fakeLine{},
	}
	drv, err := actuator.NewDriver(r.irr, r.fer, r.fan)
	require.NoError(t, err)
	ids := 0
	r.engine = NewEngine(r.sensors, drv, r.clock, entities.DefaultThresholds(),
		WithCycleIDs(func() string { ids++; return "cycle-" + string(rune('0'+ids)) }))
	r.engine.Subscribe(func(ev messages.StatusChanged) { r.events = append(r.events, ev) })
	return r
}

func TestIrrigationWaitsInitialCooldown(t *testing.T) {
	r := newRig(t, 10000)
	r.sensors.percent = 0
	r.engine.Tick()
	assert.False(t, r.engine.Irrigation().Active, "elapsed since stop must exceed cooldown strictly")
	assert.Equal(t, 1, r.irr.level)
}

func TestIrrigationStarts(t *testing.T) {
	r := newRig(t, 10001)
	r.sensors.percent = 0
	r.engine.Tick()

	st := r.engine.Irrigation()
	assert.True(t, st.Active)
	assert.Equal(t, uint32(10001), st.StartedAtMs)
	assert.Equal(t, "cycle-1", st.CycleID)
	assert.Equal(t, 0, r.irr.level, "active-low: on drives the line to 0")
	require.Len(t, r.events, 1)
	assert.Equal(t, entities.Irrigation, r.events[0].Actuator)
	assert.Equal(t, entities.StateOn, r.events[0].NewState)
	assert.Equal(t, messages.SourceAuto, r.events[0].Source)
	assert.Equal(t, "cycle-1", r.events[0].CycleID)
}

func TestIrrigationNotStartedAboveMinimum(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 1
	r.engine.Tick()
	assert.False(t, r.engine.Irrigation().Active)
	assert.Empty(t, r.events)
}

func TestIrrigationStopsAfterDuration(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.engine.Tick()
	require.True(t, r.engine.Irrigation().Active)

	r.clock.Advance(4999 * time.Millisecond)
	r.engine.Tick()
	assert.True(t, r.engine.Irrigation().Active)

	r.clock.Advance(time.Millisecond)
	r.engine.Tick()
	st := r.engine.Irrigation()
	assert.False(t, st.Active)
	assert.Equal(t, uint32(25000), st.LastStoppedAtMs)
	assert.Equal(t, 1, r.irr.level)
	require.Len(t, r.events, 2)
	assert.Equal(t, entities.StateOff, r.events[1].NewState)
	assert.Equal(t, "cycle-1", r.events[1].CycleID)
}

func TestIrrigationRespectsCooldown(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.engine.Tick()
	r.clock.Advance(5 * time.Second)
	r.engine.Tick()
	require.False(t, r.engine.Irrigation().Active)

	r.clock.Advance(10 * time.Second)
	r.engine.Tick()
	assert.False(t, r.engine.Irrigation().Active, "exactly the cooldown is not enough")

	r.clock.Advance(time.Millisecond)
	r.engine.Tick()
	assert.True(t, r.engine.Irrigation().Active)
	assert.Equal(t, "cycle-2", r.engine.Irrigation().CycleID)
}

func TestIrrigationStopsEvenWhenSoilReadFails(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.engine.Tick()
	require.True(t, r.engine.Irrigation().Active)

	r.sensors.soilErr = errors.New("bus timeout")
	r.clock.Advance(5 * time.Second)
	r.engine.Tick()
	assert.False(t, r.engine.Irrigation().Active)
	assert.Equal(t, 1, r.irr.level)
}

func TestIrrigationStartFailureKeepsStateOff(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.irr.err = errors.New("line busy")
	assert.NotPanics(t, r.engine.Tick)
	assert.False(t, r.engine.Irrigation().Active)
	assert.Empty(t, r.events)
}

func TestIrrigationAcrossCounterWraparound(t *testing.T) {
	r := newRig(t, math.MaxUint32-1999)
	r.sensors.percent = 0
	r.engine.Tick()
	require.True(t, r.engine.Irrigation().Active)

	r.clock.Advance(3 * time.Second)
	r.engine.Tick()
	assert.True(t, r.engine.Irrigation().Active, "3s after start, across the wrap")

	r.clock.Advance(2 * time.Second)
	r.engine.Tick()
	st := r.engine.Irrigation()
	assert.False(t, st.Active)
	assert.Equal(t, uint32(3000), st.LastStoppedAtMs)
}

func TestFanStrictThreshold(t *testing.T) {
	r := newRig(t, 0)

	r.sensors.temp = 36
	r.engine.Tick()
	assert.False(t, r.engine.FanOn())

	r.sensors.temp = 37
	r.engine.Tick()
	assert.True(t, r.engine.FanOn())
	assert.Equal(t, 0, r.fan.level)

	r.sensors.temp = 36
	r.engine.Tick()
	assert.False(t, r.engine.FanOn())

	r.sensors.temp = 37
	r.engine.Tick()
	r.sensors.temp = 35
	r.engine.Tick()
	assert.False(t, r.engine.FanOn())
	assert.Equal(t, 1, r.fan.level)
	assert.Len(t, r.events, 4)
}

func TestFanRunsWhenSoilFails(t *testing.T) {
	r := newRig(t, 0)
	r.sensors.soilErr = errors.New("nack")
	r.sensors.temp = 40
	r.engine.Tick()
	assert.True(t, r.engine.FanOn())
}

func TestIrrigationRunsWhenClimateFails(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.sensors.tempErr = errors.New("crc mismatch")
	r.engine.Tick()
	assert.True(t, r.engine.Irrigation().Active)
	assert.False(t, r.engine.FanOn())
}

func TestClimateFailureKeepsFanState(t *testing.T) {
	r := newRig(t, 0)
	r.sensors.temp = 40
	r.engine.Tick()
	require.True(t, r.engine.FanOn())

	r.sensors.tempErr = errors.New("timeout")
	r.engine.Tick()
	assert.True(t, r.engine.FanOn())
}

func TestManualOffEndsAutomaticCycle(t *testing.T) {
	r := newRig(t, 20000)
	r.sensors.percent = 0
	r.engine.Tick()
	r.clock.Advance(time.Second)

	require.NoError(t, r.engine.SetManual(entities.Irrigation, false))
	st := r.engine.Irrigation()
	assert.False(t, st.Active)
	assert.Equal(t, uint32(21000), st.LastStoppedAtMs)
	assert.Equal(t, 1, r.irr.level)
	assert.Equal(t, messages.SourceManual, r.events[len(r.events)-1].Source)
}

func TestManualOnDoesNotStartCycle(t *testing.T) {
	r := newRig(t, 0)
	require.NoError(t, r.engine.SetManual(entities.Irrigation, true))
	assert.False(t, r.engine.Irrigation().Active)
	assert.True(t, r.engine.IsOn(entities.Irrigation))
	assert.Equal(t, 0, r.irr.level)
}

func TestManualValveAdoptedWithoutDuplicateEvent(t *testing.T) {
	r := newRig(t, 20000)
	require.NoError(t, r.engine.SetManual(entities.Irrigation, true))
	require.Len(t, r.events, 1)

	r.sensors.percent = 0
	r.engine.Tick()
	assert.True(t, r.engine.Irrigation().Active)
	assert.Len(t, r.events, 1, "valve was already open")

	r.clock.Advance(5 * time.Second)
	r.engine.Tick()
	assert.False(t, r.engine.Irrigation().Active)
	assert.Equal(t, 1, r.irr.level)
	require.Len(t, r.events, 2)
	assert.Equal(t, entities.StateOff, r.events[1].NewState)
}

func TestManualFertigationTracksState(t *testing.T) {
	r := newRig(t, 500)
	require.NoError(t, r.engine.SetManual(entities.Fertigation, true))
	assert.True(t, r.engine.Fertigation().Active)
	assert.Equal(t, uint32(500), r.engine.Fertigation().StartedAtMs)
	assert.Equal(t, 0, r.fer.level)

	r.clock.Advance(4 * time.Second)
	require.NoError(t, r.engine.SetManual(entities.Fertigation, false))
	assert.False(t, r.engine.Fertigation().Active)
	assert.Equal(t, uint32(4500), r.engine.Fertigation().LastStoppedAtMs)
	assert.Len(t, r.events, 2)
}

func TestManualNoChangeEmitsNothing(t *testing.T) {
	r := newRig(t, 0)
	require.NoError(t, r.engine.SetManual(entities.Fan, false))
	assert.Empty(t, r.events)
}

func TestManualFanOverriddenByRule(t *testing.T) {
	r := newRig(t, 0)
	r.sensors.temp = 20
	require.NoError(t, r.engine.SetManual(entities.Fan, true))
	r.engine.Tick()
	assert.False(t, r.engine.FanOn())
}

func TestDisconnectedSoilTriggersIrrigation(t *testing.T) {
	soil := soilADC{1: 60000}
	reader := sensor.NewReader(climate{25}, nil, soil, sensor.Options{
		Calibration:     sensor.Calibration{Dry: 65000, Wet: 10000},
		DisconnectedRaw: 59000,
	})
	irr := &fakeLine{}
	drv, err := actuator.NewDriver(irr, &fakeLine{}, &fakeLine{})
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	e := NewEngine(reader, drv, clock.NewManual(60000), entities.DefaultThresholds(),
		WithMetrics(metrics.NewEngine(reg)))

	e.Tick()
	assert.True(t, e.Irrigation().Active)
	assert.NotEmpty(t, e.Irrigation().CycleID)
	assert.Equal(t, 0, irr.level)
}

type soilADC map[int]uint16

func (s soilADC) ReadRaw(ch int) (uint16, error) { return s[ch], nil }

type climate struct{ t float64 }

func (c climate) Read() (float64, float64, error) { return c.t, 50, nil }

func TestChangingErrorTextReportedOncePerWindow(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	r := newRig(t, 0)
	for i := 0; i < 20; i++ {
		r.sensors.tempErr = &sensor.SensorIOError{
			Sensor: sensor.NameClimate,
			Op:     "read",
			Err:    fmt.Errorf("sht30: crc mismatch (got 0x%02X)", i),
		}
		r.engine.Tick()
		r.clock.Advance(100 * time.Millisecond)
	}
	assert.Equal(t, 1, strings.Count(buf.String(), "fan check failed"))

	r.sensors.tempErr = nil
	r.engine.Tick()
	assert.Contains(t, buf.String(), "fan check recovered")
}

func TestErrorClass(t *testing.T) {
	sio := &sensor.SensorIOError{Sensor: "soil2", Op: "read", Err: errors.New("x")}
	assert.Equal(t, "soil2 read", errorClass(fmt.Errorf("check: %w", sio)))
	fault := &actuator.ActuatorFault{Actuator: entities.Fan, Level: 0, Err: errors.New("ebusy")}
	assert.Equal(t, "actuator fan", errorClass(errors.Join(fault)))
	assert.Equal(t, "plain", errorClass(errors.New("plain")))
}
