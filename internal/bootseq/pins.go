package bootseq

import "github.com/tilixi/tilixi/internal/bus"

// HostPins is the bus.Pins implementation used when the core runs
// against a host directory standing in for the SD card: there is no
// shared SPI bus to switch and the card is always present, since
// "the card" is just a directory on the host filesystem.
type HostPins struct{}

// Select implements bus.Pins. Switching never fails on the host.
func (HostPins) Select(p bus.Peripheral) error { return nil }

// CardPresent implements bus.Pins. Always true: the host directory is
// always there.
func (HostPins) CardPresent() bool { return true }
