// Package automation owns the greenhouse control rules: timed irrigation
// driven by one soil channel and a bang-bang fan driven by air temperature.
package automation

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/MateoEspitia-dev/greenhouse/internal/actuator"
	"github.com/MateoEspitia-dev/greenhouse/internal/clock"
	"github.com/MateoEspitia-dev/greenhouse/internal/metrics"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/messages"
	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
	"github.com/MateoEspitia-dev/greenhouse/pkg/dedup"
)

const (
	subsystemIrrigation = "irrigation"
	subsystemFan        = "fan"
)

// Sensors is what the engine reads each tick.
type Sensors interface {
	ReadSoil(channel int) (entities.SoilSensor, error)
	ReadTemperatureHumidity() (tempC, rh float64, err error)
}

// Actuators is what the engine switches.
type Actuators interface {
	Set(a entities.Actuator, on bool) error
	IsOn(a entities.Actuator) bool
}

type Option func(*Engine)

func WithMetrics(m *metrics.Engine) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithReportWindow sets how long an identical failure stays silent after being logged.
func WithReportWindow(d time.Duration) Option {
	return func(e *Engine) { e.reports = dedup.New(d, 64) }
}

func WithCycleIDs(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// Engine is not safe for concurrent use: Tick, SetManual and Subscribe must
// run on the control loop goroutine.
type Engine struct {
	sensors   Sensors
	actuators Actuators
	clock     clock.Clock
	th        entities.Thresholds

	irrigation  entities.IrrigationState
	fertigation entities.FertigationState

	subscribers []func(messages.StatusChanged)
	reports     *dedup.Deduper
	failing     map[string]string
	metrics     *metrics.Engine
	newID       func() string
	now         func() time.Time
}

func NewEngine(s Sensors, a Actuators, c clock.Clock, th entities.Thresholds, opts ...Option) *Engine {
	e := &Engine{
		sensors:   s,
		actuators: a,
		clock:     c,
		th:        th,
		reports:   dedup.New(30*time.Second, 64),
		failing:   map[string]string{},
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Subscribe registers fn for every actuator change. fn runs synchronously
// inside Tick or SetManual.
func (e *Engine) Subscribe(fn func(messages.StatusChanged)) {
	e.subscribers = append(e.subscribers, fn)
}

func (e *Engine) Thresholds() entities.Thresholds        { return e.th }
func (e *Engine) Irrigation() entities.IrrigationState   { return e.irrigation }
func (e *Engine) Fertigation() entities.FertigationState { return e.fertigation }
func (e *Engine) FanOn() bool                            { return e.actuators.IsOn(entities.Fan) }
func (e *Engine) IsOn(a entities.Actuator) bool          { return e.actuators.IsOn(a) }

// Tick evaluates the irrigation and fan rules once. The two paths are
// independent: a failure in one is reported and the other still runs.
// Tick never panics on sensor or actuator errors and always returns.
func (e *Engine) Tick() {
	now := e.clock.NowMs()
	e.metrics.Tick()
	e.settle(subsystemIrrigation, e.checkIrrigation(now))
	e.settle(subsystemFan, e.checkFan(now))
}

func (e *Engine) checkIrrigation(now uint32) error {
	var errs []error
	soil, readErr := e.sensors.ReadSoil(e.th.MoistureChannel)
	if readErr != nil {
		errs = append(errs, readErr)
	} else {
		e.metrics.Soil(soil.Channel, soil.Raw, soil.Percent)
		if soil.Disconnected {
			e.notice(subsystemIrrigation+": disconnected",
				"auto: soil channel %d looks disconnected (raw=%d), reading as 0%%", soil.Channel+1, soil.Raw)
		}
		if !e.irrigation.Active && soil.Percent <= e.th.MinSoilPercent &&
			clock.Elapsed(now, e.irrigation.LastStoppedAtMs) > clock.Millis(e.th.IrrigationCooldown) {
			if err := e.startIrrigation(now, soil); err != nil {
				errs = append(errs, err)
			}
		}
	}
	// the stop rule depends only on time, so it runs even if the read failed
	if e.irrigation.Active && clock.Elapsed(now, e.irrigation.StartedAtMs) >= clock.Millis(e.th.IrrigationDuration) {
		if err := e.stopIrrigation(now, messages.SourceAuto); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// startIrrigation opens a cycle. A valve already opened by hand is adopted
// into the cycle, so it still closes after the duration, without an event.
func (e *Engine) startIrrigation(now uint32, soil entities.SoilSensor) error {
	was := e.actuators.IsOn(entities.Irrigation)
	if err := e.actuators.Set(entities.Irrigation, true); err != nil {
		return fmt.Errorf("start irrigation: %w", err)
	}
	e.irrigation.Active = true
	e.irrigation.StartedAtMs = now
	e.irrigation.CycleID = e.newID()
	log.Printf("auto: irrigation ON cycle=%s soil%d=%d%% raw=%d",
		e.irrigation.CycleID, soil.Channel+1, soil.Percent, soil.Raw)
	if !was {
		e.emit(entities.Irrigation, true, messages.SourceAuto, e.irrigation.CycleID, now)
	}
	return nil
}

func (e *Engine) stopIrrigation(now uint32, src messages.Source) error {
	if err := e.actuators.Set(entities.Irrigation, false); err != nil {
		return fmt.Errorf("stop irrigation: %w", err)
	}
	cycle := e.irrigation.CycleID
	ran := clock.Elapsed(now, e.irrigation.StartedAtMs)
	e.irrigation.Active = false
	e.irrigation.LastStoppedAtMs = now
	e.irrigation.CycleID = ""
	log.Printf("%s: irrigation OFF cycle=%s after %dms", src, cycle, ran)
	e.emit(entities.Irrigation, false, src, cycle, now)
	return nil
}

func (e *Engine) checkFan(now uint32) error {
	temp, rh, err := e.sensors.ReadTemperatureHumidity()
	if err != nil {
		return err
	}
	e.metrics.Climate(temp, rh)
	on := e.actuators.IsOn(entities.Fan)
	switch {
	case temp > e.th.FanThresholdC && !on:
		if err := e.actuators.Set(entities.Fan, true); err != nil {
			return fmt.Errorf("start fan: %w", err)
		}
		log.Printf("auto: fan ON temp=%.2fC > %.1fC", temp, e.th.FanThresholdC)
		e.emit(entities.Fan, true, messages.SourceAuto, "", now)
	case temp <= e.th.FanThresholdC && on:
		if err := e.actuators.Set(entities.Fan, false); err != nil {
			return fmt.Errorf("stop fan: %w", err)
		}
		log.Printf("auto: fan OFF temp=%.2fC", temp)
		e.emit(entities.Fan, false, messages.SourceAuto, "", now)
	}
	return nil
}

// SetManual switches an actuator on operator request. Turning irrigation off
// during an automatic cycle ends the cycle and starts the cooldown.
// The fan rule overrides a manual fan change on the next tick.
func (e *Engine) SetManual(a entities.Actuator, on bool) error {
	now := e.clock.NowMs()
	if a == entities.Irrigation && !on && e.irrigation.Active {
		return e.stopIrrigation(now, messages.SourceManual)
	}
	was := e.actuators.IsOn(a)
	if err := e.actuators.Set(a, on); err != nil {
		return err
	}
	if was == on {
		return nil
	}
	if a == entities.Fertigation {
		e.fertigation.Active = on
		if on {
			e.fertigation.StartedAtMs = now
		} else {
			e.fertigation.LastStoppedAtMs = now
		}
	}
	log.Printf("manual: %s %s", a, entities.StateOf(on))
	e.emit(a, on, messages.SourceManual, "", now)
	return nil
}

func (e *Engine) emit(a entities.Actuator, on bool, src messages.Source, cycle string, now uint32) {
	e.metrics.Transition(string(a), string(src), on)
	ev := messages.StatusChanged{
		Actuator:  a,
		NewState:  entities.StateOf(on),
		Source:    src,
		CycleID:   cycle,
		AtMs:      now,
		Timestamp: e.now().UTC(),
	}
	for _, fn := range e.subscribers {
		fn(ev)
	}
}

// settle logs a subsystem failure once per report window, and logs recovery.
func (e *Engine) settle(subsystem string, err error) {
	if err == nil {
		if key, ok := e.failing[subsystem]; ok {
			delete(e.failing, subsystem)
			e.reports.Forget(key)
			log.Printf("auto: %s check recovered", subsystem)
		}
		return
	}
	e.metrics.SensorError(subsystem)
	key := subsystem + ": " + errorClass(err)
	if prev, ok := e.failing[subsystem]; ok && prev != key {
		e.reports.Forget(prev)
	}
	e.failing[subsystem] = key
	if ok, skipped := e.reports.ShouldReport(key); ok {
		if skipped > 0 {
			log.Printf("auto: %s check failed: %v (repeated %d times)", subsystem, err, skipped)
		} else {
			log.Printf("auto: %s check failed: %v", subsystem, err)
		}
	}
}

// errorClass names a failure without its volatile detail, so a sensor whose
// error text changes on every read still reports once per window.
func errorClass(err error) string {
	var sio *sensor.SensorIOError
	if errors.As(err, &sio) {
		return sio.Sensor + " " + sio.Op
	}
	var fault *actuator.ActuatorFault
	if errors.As(err, &fault) {
		return "actuator " + string(fault.Actuator)
	}
	return err.Error()
}

func (e *Engine) notice(key, format string, args ...any) {
	if ok, _ := e.reports.ShouldReport(key); ok {
		log.Printf(format, args...)
	}
}
