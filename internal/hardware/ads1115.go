package hardware

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

const (
	ADS1115Addr = 0x48

	regConversion = 0x00
	regConfig     = 0x01

	configOsSingle            uint16 = 0x8000
	configModeSingle          uint16 = 0x0100
	configGainOne             uint16 = 0x0200 // +/- 4.096V
	configDataRate860         uint16 = 0x00E0
	configComparitorQueueNone uint16 = 0x0003

	convTimeout  = 50 * time.Millisecond
	convPollWait = 2 * time.Millisecond

	gainOneVolts = 4.096

	// ADCReference is the probe supply; it maps to raw 65535.
	ADCReference = 3.3
)

var muxSingle = [4]uint16{0x4000, 0x5000, 0x6000, 0x7000}

// ADS1115 reads the soil probes on AIN0..AIN3 in single-shot mode.
type ADS1115 struct {
	bus   Bus
	addr  byte
	sleep func(time.Duration)
	now   func() time.Time
}

func NewADS1115(bus Bus, addr byte) *ADS1115 {
	if addr == 0 {
		addr = ADS1115Addr
	}
	return &ADS1115{bus: bus, addr: addr, sleep: time.Sleep, now: time.Now}
}

// ReadRaw converts one channel and returns it scaled so that 0..ADCReference
// volts span 0..65535. Negative conversions clamp to zero, inputs above the
// reference to 65535.
func (a *ADS1115) ReadRaw(channel int) (uint16, error) {
	if channel < 0 || channel >= len(muxSingle) {
		return 0, fmt.Errorf("ads1115: invalid channel %d", channel)
	}
	config := configOsSingle | configModeSingle | configComparitorQueueNone |
		muxSingle[channel] | configGainOne | configDataRate860
	if err := a.bus.WriteBytes(a.addr, []byte{regConfig, byte(config >> 8), byte(config)}); err != nil {
		return 0, fmt.Errorf("ads1115 write config: %w", err)
	}

	deadline := a.now().Add(convTimeout)
	for {
		cfg, err := a.readReg(regConfig)
		if err != nil {
			return 0, fmt.Errorf("ads1115 read config: %w", err)
		}
		if cfg&configOsSingle != 0 {
			break
		}
		if a.now().After(deadline) {
			return 0, fmt.Errorf("ads1115: conversion timeout (last cfg=0x%04X)", cfg)
		}
		a.sleep(convPollWait)
	}

	v, err := a.readReg(regConversion)
	if err != nil {
		return 0, fmt.Errorf("ads1115 read conversion: %w", err)
	}
	return scaleToReference(int16(v)), nil
}

func scaleToReference(code int16) uint16 {
	if code <= 0 {
		return 0
	}
	volts := float64(code) * gainOneVolts / 32768
	raw := math.Round(volts / ADCReference * 65535)
	if raw > 65535 {
		return 65535
	}
	return uint16(raw)
}

func (a *ADS1115) readReg(reg byte) (uint16, error) {
	if err := a.bus.WriteBytes(a.addr, []byte{reg}); err != nil {
		return 0, err
	}
	b, err := a.bus.ReadBytes(a.addr, 2)
	if err != nil {
		return 0, err
	}
	if len(b) < 2 {
		return 0, ErrShortRead
	}
	return binary.BigEndian.Uint16(b), nil
}
