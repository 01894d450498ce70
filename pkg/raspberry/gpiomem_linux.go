//go:build linux

package raspberry

import (
	"github.com/warthog618/gpio"
)

// Mem is the gpio driver based on the memory mapped registers (/dev/gpiomem).
type Mem struct{}

// Pin is a gpio pin of the Mem driver.
type Pin struct {
	gpioPin *gpio.Pin
}

// OpenMem maps the GPIO memory range from /dev/gpiomem.
func OpenMem() (*Mem, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &Mem{}, nil
}

// NewInput sets the pin (BCM GPIO number) as input with the requested pull state.
func (m *Mem) NewInput(pin int, terminator string) (Input, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	p := gpio.NewPin(pin)
	p.Input()

	switch terminator {
	case "pullup":
		p.PullUp()
	case "pulldown":
		p.PullDown()
	case "none":
		p.PullNone()
	}

	return &Pin{gpioPin: p}, nil
}

// NewOutput sets the pin (BCM GPIO number) as output with low level.
func (m *Mem) NewOutput(pin int) (Output, error) {
	p := gpio.NewPin(pin)
	p.Low()
	p.Output()
	return &Pin{gpioPin: p}, nil
}

// Close unmaps GPIO memory.
func (m *Mem) Close() error {
	return gpio.Close()
}

// Read pin state (high/low).
func (p *Pin) Read() (bool, error) {
	return bool(p.gpioPin.Read()), nil
}

// Write sets the pin to high (true) or low (false).
func (p *Pin) Write(high bool) error {
	if high {
		p.gpioPin.High()
	} else {
		p.gpioPin.Low()
	}
	return nil
}

// Close does nothing, the pin keeps its mode until the memory is unmapped.
func (p *Pin) Close() error {
	return nil
}
