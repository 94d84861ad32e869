// Package metrics exposes the controller state as Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "greenhouse"

// Engine collects automation metrics. A nil *Engine is a valid no-op.
type Engine struct {
	soilPercent  *prometheus.GaugeVec
	soilRaw      *prometheus.GaugeVec
	temperature  prometheus.Gauge
	humidity     prometheus.Gauge
	actuator     *prometheus.GaugeVec
	transitions  *prometheus.CounterVec
	sensorErrors *prometheus.CounterVec
	ticks        prometheus.Counter
}

func NewEngine(reg prometheus.Registerer) *Engine {
	m := &Engine{
		soilPercent: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "soil_moisture_percent",
			Help: "Calibrated soil moisture per channel.",
		}, []string{"channel"}),
		soilRaw: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "soil_raw",
			Help: "Raw soil ADC value per channel.",
		}, []string{"channel"}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "temperature_celsius",
			Help: "Last air temperature reading.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "relative_humidity_percent",
			Help: "Last relative humidity reading.",
		}),
		actuator: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "actuator_on",
			Help: "1 when the actuator is energized.",
		}, []string{"actuator"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "actuator_transitions_total",
			Help: "Actuator state changes by source.",
		}, []string{"actuator", "state", "source"}),
		sensorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sensor_errors_total",
			Help: "Failed sensor checks by subsystem.",
		}, []string{"subsystem"}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total",
			Help: "Automation ticks executed.",
		}),
	}
	reg.MustRegister(m.soilPercent, m.soilRaw, m.temperature, m.humidity,
		m.actuator, m.transitions, m.sensorErrors, m.ticks)
	return m
}

func (m *Engine) Tick() {
	if m == nil {
		return
	}
	m.ticks.Inc()
}

func (m *Engine) Soil(channel int, raw uint16, percent int) {
	if m == nil {
		return
	}
	ch := strconv.Itoa(channel + 1)
	m.soilRaw.WithLabelValues(ch).Set(float64(raw))
	m.soilPercent.WithLabelValues(ch).Set(float64(percent))
}

func (m *Engine) Climate(tempC, rh float64) {
	if m == nil {
		return
	}
	m.temperature.Set(tempC)
	m.humidity.Set(rh)
}

func (m *Engine) Transition(actuator, source string, on bool) {
	if m == nil {
		return
	}
	state, v := "off", 0.0
	if on {
		state, v = "on", 1.0
	}
	m.actuator.WithLabelValues(actuator).Set(v)
	m.transitions.WithLabelValues(actuator, state, source).Inc()
}

func (m *Engine) SensorError(subsystem string) {
	if m == nil {
		return
	}
	m.sensorErrors.WithLabelValues(subsystem).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
