package hardware

import (
	"fmt"
	"time"
)

const (
	SHT30Addr = 0x44

	sht30Settle = 15 * time.Millisecond
)

// single shot, high repeatability, clock stretching
var sht30Measure = []byte{0x2C, 0x06}

// SHT30 is the temperature/humidity probe.
type SHT30 struct {
	bus   Bus
	addr  byte
	sleep func(time.Duration)
}

func NewSHT30(bus Bus, addr byte) *SHT30 {
	if addr == 0 {
		addr = SHT30Addr
	}
	return &SHT30{bus: bus, addr: addr, sleep: time.Sleep}
}

// Read triggers one measurement and returns °C and %RH.
func (s *SHT30) Read() (tempC, rh float64, err error) {
	if err := s.bus.WriteBytes(s.addr, sht30Measure); err != nil {
		return 0, 0, fmt.Errorf("sht30 measure: %w", err)
	}
	s.sleep(sht30Settle)
	d, err := s.bus.ReadBytes(s.addr, 6)
	if err != nil {
		return 0, 0, fmt.Errorf("sht30 read: %w", err)
	}
	return DecodeSHT30(d)
}

// DecodeSHT30 decodes the 6-byte payload: temperature word, crc, humidity word, crc.
func DecodeSHT30(d []byte) (tempC, rh float64, err error) {
	if len(d) < 6 {
		return 0, 0, fmt.Errorf("sht30: %w (%d bytes)", ErrShortRead, len(d))
	}
	if c := crc8(d[0:2]); c != d[2] {
		return 0, 0, fmt.Errorf("sht30: temperature crc 0x%02X, want 0x%02X", d[2], c)
	}
	if c := crc8(d[3:5]); c != d[5] {
		return 0, 0, fmt.Errorf("sht30: humidity crc 0x%02X, want 0x%02X", d[5], c)
	}
	t := float64(uint16(d[0])<<8 | uint16(d[1]))
	h := float64(uint16(d[3])<<8 | uint16(d[4]))
	return -45 + 175*t/65535, 100 * h / 65535, nil
}

// crc8 is the Sensirion checksum: polynomial 0x31, init 0xFF.
func crc8(data []byte) byte {
	crc := byte(0xFF)
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x31
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
