// Command sensor-sim replays the automation against the simulated greenhouse
// on a virtual clock and prints a JSON snapshot per sample interval.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/MateoEspitia-dev/greenhouse/internal/actuator"
	"github.com/MateoEspitia-dev/greenhouse/internal/automation"
	"github.com/MateoEspitia-dev/greenhouse/internal/clock"
	"github.com/MateoEspitia-dev/greenhouse/internal/config"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
	"github.com/MateoEspitia-dev/greenhouse/internal/model/messages"
	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
	sensorSimulator "github.com/MateoEspitia-dev/greenhouse/internal/sensor-simulator"
)

func main() {
	// define flags
	cfgPath := flag.String("config", "", "YAML config file (defaults to GREENHOUSE_CONFIG)")
	duration := flag.Duration("duration", 10*time.Minute, "simulated time to replay")
	step := flag.Duration("step", 0, "tick period (defaults to the configured control period)")
	every := flag.Duration("every", 10*time.Second, "snapshot interval")
	decay := flag.Float64("decay", 0.002, "moisture lost per second with the valve closed, in [0..1]")
	seed := flag.Float64("seed", 0.30, "starting moisture, in [0..1]")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *step <= 0 {
		*step = cfg.ControlPeriod
	}
	if *every < *step {
		*every = *step
	}

	start := time.Now()
	clk := clock.NewManual(0)
	virtualNow := func() time.Time { return start.Add(time.Duration(clk.NowMs()) * time.Millisecond) }

	sim := sensorSimulator.NewGreenhouse(cfg.Soil.Calibration, *decay)
	sim.UseClock(virtualNow)
	sim.Seed(*seed)

	reader := sensor.NewReader(sim, sim, sim, sensor.Options{
		Channels:        cfg.Soil.Channels,
		Calibration:     cfg.Soil.Calibration,
		DisconnectedRaw: cfg.Thresholds.DisconnectedRaw,
	})
	outputs, err := actuator.NewDriver(sim.Irrigation, sim.Fertigation, sim.Fan)
	if err != nil {
		log.Fatalf("actuators: %v", err)
	}
	engine := automation.NewEngine(reader, outputs, clk, cfg.Thresholds)
	engine.Subscribe(func(ev messages.StatusChanged) {
		log.Printf("[%8.1fs] %s -> %s (%s) %s", float64(ev.AtMs)/1000, ev.Actuator, ev.NewState, ev.Source, ev.CycleID)
	})

	enc := json.NewEncoder(os.Stdout)
	var sinceSample time.Duration
	for elapsed := time.Duration(0); elapsed <= *duration; elapsed += *step {
		engine.Tick()
		if elapsed == 0 || sinceSample >= *every {
			if err := enc.Encode(snapshot(reader, engine, clk.NowMs(), virtualNow())); err != nil {
				log.Fatalf("encode: %v", err)
			}
			sinceSample = 0
		}
		clk.Advance(*step)
		sinceSample += *step
	}
}

func snapshot(r *sensor.Reader, e *automation.Engine, atMs uint32, ts time.Time) messages.SensorData {
	d := messages.SensorData{
		AtMs:        atMs,
		Irrigation:  entities.StateOf(e.IsOn(entities.Irrigation)),
		Fertigation: entities.StateOf(e.IsOn(entities.Fertigation)),
		Fan:         entities.StateOf(e.IsOn(entities.Fan)),
		Timestamp:   ts,
	}
	for ch := 0; ch < r.Channels(); ch++ {
		s, err := r.ReadSoil(ch)
		if err != nil {
			log.Printf("soil%d: %v", ch+1, err)
			continue
		}
		d.Soil = append(d.Soil, s)
	}
	if t, rh, err := r.ReadTemperatureHumidity(); err == nil {
		d.Temperature, d.Humidity = &t, &rh
	}
	if lux, err := r.ReadLux(); err == nil {
		d.Lux = &lux
	}
	return d
}
