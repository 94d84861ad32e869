package main

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFatalfReleasesBeforeExit(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		exit = os.Exit
	})

	var steps []string
	exit = func(code int) {
		steps = append(steps, "exit")
		assert.Equal(t, 1, code)
	}
	fatalf(func() { steps = append(steps, "release") }, "actuators: %v", "nil line")

	assert.Equal(t, []string{"release", "exit"}, steps)
	assert.Contains(t, buf.String(), "actuators: nil line")
}
