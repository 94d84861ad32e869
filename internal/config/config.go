// Package config loads the controller configuration: built-in defaults,
// then an optional YAML file, then environment variables (optionally from .env).
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
	"github.com/MateoEspitia-dev/greenhouse/internal/sensor"
)

type Config struct {
	Simulate      bool          `yaml:"simulate"`
	MetricsAddr   string        `yaml:"metrics_addr"` // empty disables the endpoint
	ControlPeriod time.Duration `yaml:"control_period"`

	Hardware   Hardware            `yaml:"hardware"`
	Soil       Soil                `yaml:"soil"`
	Thresholds entities.Thresholds `yaml:"thresholds"`
	Breaker    Breaker             `yaml:"breaker"`
	UI         UI                  `yaml:"ui"`
}

type Hardware struct {
	BusTimeout  time.Duration `yaml:"bus_timeout"`
	SHT30Addr   uint8         `yaml:"sht30_addr"`
	BH1750Addr  uint8         `yaml:"bh1750_addr"`
	ADS1115Addr uint8         `yaml:"ads1115_addr"`

	GPIOChip        string `yaml:"gpio_chip"`
	IrrigationLine  int    `yaml:"irrigation_line"`
	FertigationLine int    `yaml:"fertigation_line"`
	FanLine         int    `yaml:"fan_line"`

	OpenRetries int `yaml:"open_retries"`
}

type Soil struct {
	Channels    int                `yaml:"channels"`
	Calibration sensor.Calibration `yaml:"calibration"`
}

type Breaker struct {
	Failures int           `yaml:"failures"` // 0 disables
	Open     time.Duration `yaml:"open"`
}

type UI struct {
	Refresh        time.Duration `yaml:"refresh"`
	WelcomeTimeout time.Duration `yaml:"welcome_timeout"`
	TouchXMin      int           `yaml:"touch_x_min"`
	TouchXMax      int           `yaml:"touch_x_max"`
	TouchYMin      int           `yaml:"touch_y_min"`
	TouchYMax      int           `yaml:"touch_y_max"`
}

func Default() Config {
	return Config{
		ControlPeriod: 100 * time.Millisecond,
		Hardware: Hardware{
			BusTimeout:      250 * time.Millisecond,
			SHT30Addr:       0x44,
			BH1750Addr:      0x23,
			ADS1115Addr:     0x48,
			GPIOChip:        "gpiochip0",
			IrrigationLine:  18,
			FertigationLine: 8,
			FanLine:         9,
			OpenRetries:     5,
		},
		Soil: Soil{
			Channels:    3,
			Calibration: sensor.DefaultCalibration(),
		},
		Thresholds: entities.DefaultThresholds(),
		Breaker:    Breaker{Failures: 5, Open: 5 * time.Second},
		UI: UI{
			Refresh:        500 * time.Millisecond,
			WelcomeTimeout: 3 * time.Second,
			TouchXMin:      200,
			TouchXMax:      3900,
			TouchYMin:      200,
			TouchYMax:      3900,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// GREENHOUSE_CONFIG is consulted; no file at all is fine.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Default()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GREENHOUSE_CONFIG"))
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	e := &envParser{}
	e.boolean("SIMULATE", &cfg.Simulate)
	e.str("METRICS_ADDR", &cfg.MetricsAddr)
	e.duration("CONTROL_PERIOD", &cfg.ControlPeriod)

	h := &cfg.Hardware
	e.duration("I2C_BUS_TIMEOUT", &h.BusTimeout)
	e.addr("SHT30_ADDR", &h.SHT30Addr)
	e.addr("BH1750_ADDR", &h.BH1750Addr)
	e.addr("ADS1115_ADDR", &h.ADS1115Addr)
	e.str("GPIO_CHIP", &h.GPIOChip)
	e.integer("IRRIGATION_LINE", &h.IrrigationLine)
	e.integer("FERTIGATION_LINE", &h.FertigationLine)
	e.integer("FAN_LINE", &h.FanLine)
	e.integer("HARDWARE_OPEN_RETRIES", &h.OpenRetries)

	e.integer("SOIL_CHANNELS", &cfg.Soil.Channels)
	e.u16("SOIL_DRY_RAW", &cfg.Soil.Calibration.Dry)
	e.u16("SOIL_WET_RAW", &cfg.Soil.Calibration.Wet)

	th := &cfg.Thresholds
	e.integer("MOISTURE_CHANNEL", &th.MoistureChannel)
	e.integer("SOIL_MIN_PERCENT", &th.MinSoilPercent)
	e.duration("IRRIGATION_DURATION", &th.IrrigationDuration)
	e.duration("IRRIGATION_COOLDOWN", &th.IrrigationCooldown)
	e.duration("FERTIGATION_INTERVAL", &th.FertigationInterval)
	e.duration("FERTIGATION_DURATION", &th.FertigationDuration)
	e.float("FAN_THRESHOLD_C", &th.FanThresholdC)
	e.u16("SOIL_DISCONNECTED_RAW", &th.DisconnectedRaw)

	e.integer("SENSOR_BREAKER_FAILURES", &cfg.Breaker.Failures)
	e.duration("SENSOR_BREAKER_OPEN", &cfg.Breaker.Open)

	e.duration("SCREEN_REFRESH", &cfg.UI.Refresh)
	e.duration("WELCOME_TIMEOUT", &cfg.UI.WelcomeTimeout)
	e.integer("TOUCH_X_MIN", &cfg.UI.TouchXMin)
	e.integer("TOUCH_X_MAX", &cfg.UI.TouchXMax)
	e.integer("TOUCH_Y_MIN", &cfg.UI.TouchYMin)
	e.integer("TOUCH_Y_MAX", &cfg.UI.TouchYMax)
	return e.err
}

// Validate rejects settings the controller cannot run with. A degenerate soil
// calibration is only logged: every channel then reads 0 %.
func (c Config) Validate() error {
	var errs []error
	if c.ControlPeriod <= 0 {
		errs = append(errs, errors.New("control_period must be positive"))
	}
	if c.Soil.Channels < 1 || c.Soil.Channels > 4 {
		errs = append(errs, fmt.Errorf("soil.channels %d out of range 1..4", c.Soil.Channels))
	}
	th := c.Thresholds
	if th.MoistureChannel < 0 || th.MoistureChannel >= c.Soil.Channels {
		errs = append(errs, fmt.Errorf("thresholds.moisture_channel %d out of range 0..%d", th.MoistureChannel, c.Soil.Channels-1))
	}
	if th.MinSoilPercent < 0 || th.MinSoilPercent > 100 {
		errs = append(errs, fmt.Errorf("thresholds.min_soil_percent %d out of range 0..100", th.MinSoilPercent))
	}
	if th.IrrigationDuration <= 0 {
		errs = append(errs, errors.New("thresholds.irrigation_duration must be positive"))
	}
	if th.IrrigationCooldown < 0 {
		errs = append(errs, errors.New("thresholds.irrigation_cooldown must not be negative"))
	}
	for name, a := range map[string]uint8{"sht30_addr": c.Hardware.SHT30Addr, "bh1750_addr": c.Hardware.BH1750Addr, "ads1115_addr": c.Hardware.ADS1115Addr} {
		if a == 0 || a > 0x7F {
			errs = append(errs, fmt.Errorf("hardware.%s 0x%02X is not a 7-bit address", name, a))
		}
	}
	if c.Breaker.Failures < 0 {
		errs = append(errs, errors.New("breaker.failures must not be negative"))
	}
	if err := c.Soil.Calibration.Validate(); err != nil {
		log.Printf("config: %v, soil channels will read 0%%", err)
	}
	return errors.Join(errs...)
}

type envParser struct{ err error }

func (p *envParser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func (p *envParser) fail(key string, err error) {
	p.err = fmt.Errorf("invalid %s: %w", key, err)
}

func (p *envParser) str(key string, dst *string) {
	if v, ok := p.lookup(key); ok {
		*dst = v
	}
}

func (p *envParser) boolean(key string, dst *bool) {
	if v, ok := p.lookup(key); ok {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func (p *envParser) integer(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = n
}

func (p *envParser) u16(key string, dst *uint16) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 0, 16)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = uint16(n)
}

// addr accepts decimal or 0x-prefixed hex.
func (p *envParser) addr(key string, dst *uint8) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 0, 8)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = uint8(n)
}

func (p *envParser) float(key string, dst *float64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = f
}

func (p *envParser) duration(key string, dst *time.Duration) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return
	}
	*dst = d
}
