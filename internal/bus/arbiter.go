// Package bus implements the BusArbiter: the scoped owner of the shared
// SPI peripheral bus that the TFT display and the SD card controller
// both sit on. At any moment the bus is configured for exactly one of
// the two peripherals; this package is the only way the rest of the
// core may touch either one.
package bus

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// Peripheral identifies which device the bus is currently wired to.
type Peripheral int

const (
	TFT Peripheral = iota
	SD
)

// Pins abstracts the act of physically switching the bus to a
// peripheral's pin/clock configuration. The real ESP32 implementation
// reprograms GPIO/SPI registers; the host build (bootseq.HostPins) and
// the tests use implementations that do nothing.
type Pins interface {
	// Select switches the bus to this peripheral and holds the other
	// peripheral's chip-select in its inactive state.
	Select(p Peripheral) error
	// CardPresent reports whether an SD card currently responds. Only
	// meaningful while the bus is selected to SD.
	CardPresent() bool
}

// Arbiter serializes TFT and SD access to the shared bus. TFT is the
// resting state: WithTFT is rarely called directly because the bus
// defaults there, but every SD operation must go through WithSD so the
// bus is switched and restored on every exit path, including failure.
type Arbiter struct {
	mu   sync.Mutex
	pins Pins
	log  *logrus.Entry
	cur  Peripheral
}

// New constructs an Arbiter resting on TFT.
func New(pins Pins, log *logrus.Entry) *Arbiter {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Arbiter{pins: pins, log: log, cur: TFT}
}

// IoError is returned when the bus itself cannot be switched.
type IoError struct{ Reason string }

func (e *IoError) Error() string { return "bus: " + e.Reason }

// WithSD switches the bus to SD, runs f, and always switches back to
// TFT before returning — on success, on error, and on panic.
func WithSD[R any](a *Arbiter, f func() (R, error)) (R, error) {
	var zero R
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.pins.Select(SD); err != nil {
		return zero, &IoError{Reason: err.Error()}
	}
	a.cur = SD
	defer func() {
		if err := a.pins.Select(TFT); err != nil {
			a.log.WithError(err).Warn("bus: failed to restore TFT SPI")
		}
		a.cur = TFT
	}()
	return f()
}

// WithTFT is the symmetric scoped acquisition for TFT use. Rarely
// called directly since TFT is the default resting state, but provided
// so every touch of either peripheral goes through the same bracketed
// discipline.
func WithTFT[R any](a *Arbiter, f func() (R, error)) (R, error) {
	var zero R
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cur != TFT {
		if err := a.pins.Select(TFT); err != nil {
			return zero, &IoError{Reason: err.Error()}
		}
		a.cur = TFT
	}
	return f()
}

// Available reports whether a card is inserted and responds, retrying
// with bounded exponential backoff to tolerate a card mid-insertion
// rather than failing on the first poll — original_source's
// boot_sd_wrapper.cpp instead spins on SD.begin() directly.
func (a *Arbiter) Available() bool {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 40 * time.Millisecond
	b.MaxElapsedTime = 150 * time.Millisecond

	var present bool
	op := func() error {
		ok, err := WithSD(a, func() (bool, error) {
			return a.pins.CardPresent(), nil
		})
		if err != nil {
			return err
		}
		present = ok
		if !ok {
			return &IoError{Reason: "no card present"}
		}
		return nil
	}
	_ = backoff.Retry(op, b)
	return present
}
