// Package raspberry is the access to the gpio lines of the connectivity switch and the status led.
//
// Three drivers are supported:
//   - gpiod: the gpio character device (/dev/gpiochipN)
//   - gpiomem: the memory mapped gpio registers (/dev/gpiomem)
//   - emulated: in memory lines, e.g. for development without a raspberry pi
package raspberry

import (
	"fmt"

	"github.com/womat/debug"
)

var ErrInvalidParam = fmt.Errorf("invalid parameters")

const (
	DriverGpiod    = "gpiod"
	DriverGpiomem  = "gpiomem"
	DriverEmulated = "emulated"
)

// GPIO is the interface implemented by a gpio driver.
type GPIO interface {
	// NewInput requests a line as input, the terminator is pullup, pulldown or none.
	NewInput(pin int, terminator string) (Input, error)
	// NewOutput requests a line as output with initial low level.
	NewOutput(pin int) (Output, error)
	// Close releases the driver, the lines must be closed independently.
	Close() error
}

// Input is a line requested as input.
type Input interface {
	// Read returns true if the line level is high.
	Read() (bool, error)
	Close() error
}

// Output is a line requested as output.
type Output interface {
	// Write sets the line level to high (true) or low (false).
	Write(high bool) error
	Close() error
}

// Switch is an input line which signals the connectivity state (high = online).
type Switch struct {
	Input
}

// IsOnline reads the line level. If the line can't be read, the state is offline.
func (s Switch) IsOnline() bool {
	v, err := s.Read()
	if err != nil {
		debug.ErrorLog.Printf("can't read connectivity switch: %v", err)
		return false
	}

	return v
}

// LED is an output line which shows the connectivity state (on = online).
type LED struct {
	Output
}

// SetStatus switches the led on or off.
func (l LED) SetStatus(on bool) {
	if err := l.Write(on); err != nil {
		debug.ErrorLog.Printf("can't set status led: %v", err)
	}
}

func checkTerminator(terminator string) error {
	switch terminator {
	case "pullup", "pulldown", "none":
		return nil
	default:
		return fmt.Errorf("%w: terminator %q", ErrInvalidParam, terminator)
	}
}
