package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/MateoEspitia-dev/greenhouse/internal/actuator"
	"github.com/MateoEspitia-dev/greenhouse/internal/automation"
	"github.com/MateoEspitia-dev/greenhouse/internal/clock"
	"github.com/MateoEspitia-dev/greenhouse/internal/config"
	"github.com/MateoEspitia-dev/greenhouse/internal/hardware"
	"github.com/MateoEspitia-dev/greenhouse/internal/metrics"
	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
	sensor_simulator "github.com/MateoEspitia-dev/greenhouse/internal/sensor-simulator"
	"github.com/MateoEspitia-dev/greenhouse/internal/services/greenhouse"
	"github.com/MateoEspitia-dev/greenhouse/internal/ui"
)

// simulated soil loses 0.2% moisture per second with the valve closed
const simDecayPerSec = 0.002

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		climate         sensor.ClimateProbe
		light           sensor.LightMeter
		soil            sensor.SoilADC
		irr, fer, fan   actuator.Line
		releaseHardware = func() error { return nil }
	)
	if cfg.Simulate {
		sim := sensor_simulator.NewGreenhouse(cfg.Soil.Calibration, simDecayPerSec)
		climate, light, soil = sim, sim, sim
		irr, fer, fan = sim.Irrigation, sim.Fertigation, sim.Fan
		log.Printf("greenhouse: using simulated hardware")
	} else {
		h := cfg.Hardware
		dev, err := hardware.Open(hardware.Options{
			BusTimeout:      h.BusTimeout,
			SHT30Addr:       h.SHT30Addr,
			BH1750Addr:      h.BH1750Addr,
			ADS1115Addr:     h.ADS1115Addr,
			Chip:            h.GPIOChip,
			IrrigationLine:  h.IrrigationLine,
			FertigationLine: h.FertigationLine,
			FanLine:         h.FanLine,
			MaxRetries:      h.OpenRetries,
		})
		if err != nil {
			log.Fatalf("hardware: %v (SIMULATE=true runs without it)", err)
		}
		climate, light, soil = dev.Climate, dev.Light, dev.Soil
		irr, fer, fan = dev.Irrigation, dev.Fertigation, dev.Fan
		releaseHardware = dev.Close
	}
	release := func() {
		if err := releaseHardware(); err != nil {
			log.Printf("greenhouse: release hardware: %v", err)
		}
	}
	defer release()

	reader := sensor.NewReader(climate, light, soil, sensor.Options{
		Channels:        cfg.Soil.Channels,
		Calibration:     cfg.Soil.Calibration,
		DisconnectedRaw: cfg.Thresholds.DisconnectedRaw,
		BreakerFailures: cfg.Breaker.Failures,
		BreakerOpen:     cfg.Breaker.Open,
	})
	outputs, err := actuator.NewDriver(irr, fer, fan)
	if err != nil {
		fatalf(release, "actuators: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clk := clock.New()
	engine := automation.NewEngine(reader, outputs, clk, cfg.Thresholds,
		automation.WithMetrics(metrics.NewEngine(reg)))

	// no panel driver is linked in; the UI renders to the log
	touch := ui.NoTouch{}
	if err := touch.SetRange(ui.Range{XMin: cfg.UI.TouchXMin, XMax: cfg.UI.TouchXMax, YMin: cfg.UI.TouchYMin, YMax: cfg.UI.TouchYMax}); err != nil {
		log.Printf("ui: touch range: %v", err)
	}
	presenter := ui.NewPresenter(ui.NewLogDisplay(), touch, reader, engine, clk, ui.Options{
		Refresh:        cfg.UI.Refresh,
		WelcomeTimeout: cfg.UI.WelcomeTimeout,
	})
	engine.Subscribe(presenter.OnStatusChanged)

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Printf("greenhouse: metrics on %s/metrics", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// graceful shutdown
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
		<-sigc
		cancel()
	}()

	ctrl := greenhouse.NewController(engine, presenter, outputs, cfg.ControlPeriod)
	if err := ctrl.Run(ctx); err != nil {
		log.Printf("greenhouse: %v", err)
	}
}

var exit = os.Exit

// fatalf logs, releases the hardware and exits with status 1.
func fatalf(release func(), format string, args ...any) {
	log.Printf(format, args...)
	release()
	exit(1)
}
