// Package meter tracks a rolling average of call durations, used to expose
// frame-pacing diagnostics for the sprite manager's blit pass and the audio
// mixer's mix pass.
package meter

import (
	"math"
	"time"
)

// DefaultBufferLen is the sample window used when a Meter is used without
// New (e.g. as the zero value embedded in a larger struct).
const DefaultBufferLen = 50

// Meter is a fixed-size ring buffer of call durations.
type Meter struct {
	times []float64
	head  int
}

// New creates a Meter that averages over the last bufferLength samples.
func New(bufferLength int) *Meter {
	return &Meter{times: make([]float64, bufferLength)}
}

func (m *Meter) init() {
	if m.times == nil {
		m.times = make([]float64, DefaultBufferLen)
	}
}

// Reset clears all recorded samples.
func (m *Meter) Reset() {
	m.init()
	m.head = 0
	for i := range m.times {
		m.times[i] = 0
	}
}

// Record stores the duration of one call.
func (m *Meter) Record(d time.Duration) {
	m.init()
	m.times[m.head%len(m.times)] = d.Seconds()
	m.head++
}

func (m *Meter) avgSeconds() float64 {
	m.init()

	var sum float64
	for _, t := range m.times {
		sum += t
	}

	divisor := len(m.times)
	if m.head < len(m.times) {
		divisor = m.head
	}
	if divisor == 0 {
		return 0
	}

	return sum / float64(divisor)
}

// Rate returns the reciprocal of the average recorded duration over the
// window: how many calls of that average duration fit in one second.
func (m *Meter) Rate() int {
	avg := m.avgSeconds()
	if avg <= 0 {
		return 0
	}

	rate := int(math.Round(1.0 / avg))
	if rate < 0 {
		return 0
	}
	return rate
}

// Ms returns the average call duration, in milliseconds, over the window.
func (m *Meter) Ms() float64 {
	return m.avgSeconds() * 1000
}
