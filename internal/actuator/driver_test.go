package actuator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MateoEspitia-dev/greenhouse/internal/model/entities"
)

type fakeLine struct {
	values []int
	err    error
}

func (l *fakeLine) SetValue(v int) error {
	if l.err != nil {
		return l.err
	}
	l.values = append(l.values, v)
	return nil
}

func (l *fakeLine) last() int { return l.values[len(l.values)-1] }

func newTestDriver(t *testing.T) (*Driver, *fakeLine, *fakeLine, *fakeLine) {
	irr, fer, fan := &fakeLine{}, &fakeLine{}, &fakeLine{}
	d, err := NewDriver(irr, fer, fan)
	require.NoError(t, err)
	return d, irr, fer, fan
}

func TestAllOutputsStartOff(t *testing.T) {
	d, irr, fer, fan := newTestDriver(t)
	for _, l := range []*fakeLine{irr, fer, fan} {
		assert.Equal(t, []int{1}, l.values)
	}
	for _, a := range entities.Actuators {
		assert.False(t, d.IsOn(a))
	}
}

func TestActiveLow(t *testing.T) {
	d, irr, fer, fan := newTestDriver(t)

	require.NoError(t, d.SetIrrigation(true))
	assert.Equal(t, 0, irr.last())
	assert.True(t, d.IsOn(entities.Irrigation))

	require.NoError(t, d.SetFertigation(true))
	assert.Equal(t, 0, fer.last())

	require.NoError(t, d.SetFan(true))
	require.NoError(t, d.SetFan(false))
	assert.Equal(t, 1, fan.last())
	assert.False(t, d.IsOn(entities.Fan))
}

func TestFailedWriteKeepsState(t *testing.T) {
	d, irr, _, _ := newTestDriver(t)
	irr.err = errors.New("EBUSY")

	err := d.SetIrrigation(true)
	var fault *ActuatorFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, entities.Irrigation, fault.Actuator)
	assert.Equal(t, 0, fault.Level)
	assert.False(t, d.IsOn(entities.Irrigation))
}

func TestNilLineRejected(t *testing.T) {
	_, err := NewDriver(&fakeLine{}, nil, &fakeLine{})
	assert.Error(t, err)
}

func TestUnknownActuator(t *testing.T) {
	d, _, _, _ := newTestDriver(t)
	assert.Error(t, d.Set("heater", true))
}

func TestAllOff(t *testing.T) {
	d, irr, fer, fan := newTestDriver(t)
	require.NoError(t, d.SetIrrigation(true))
	require.NoError(t, d.SetFan(true))
	require.NoError(t, d.AllOff())
	for _, l := range []*fakeLine{irr, fer, fan} {
		assert.Equal(t, 1, l.last())
	}
}
