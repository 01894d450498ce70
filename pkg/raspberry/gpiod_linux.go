//go:build linux

package raspberry

import (
	"github.com/warthog618/gpiod"
)

// Chip represents a single GPIO chip that controls a set of lines.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// Line represents a single requested line.
type Line struct {
	gpiodLine *gpiod.Line
}

// OpenChip opens a GPIO character device, e.g. gpiochip0.
func OpenChip(name string) (*Chip, error) {
	c, err := gpiod.NewChip(name)
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewInput requests control of a single line as input.
// If granted, control is maintained until the Line is closed.
func (c *Chip) NewInput(pin int, terminator string) (Input, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	opts := []gpiod.LineReqOption{gpiod.AsInput}
	switch terminator {
	case "pullup":
		opts = append(opts, gpiod.WithPullUp)
	case "pulldown":
		opts = append(opts, gpiod.WithPullDown)
	}

	l, err := c.gpiodChip.RequestLine(pin, opts...)
	if err != nil {
		return nil, err
	}
	return &Line{gpiodLine: l}, nil
}

// NewOutput requests control of a single line as output, the initial level is low.
func (c *Chip) NewOutput(pin int) (Output, error) {
	l, err := c.gpiodChip.RequestLine(pin, gpiod.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &Line{gpiodLine: l}, nil
}

// Close releases the Chip.
//
// It does not release any lines which may be requested - they must be closed
// independently.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// Read returns true if the line is high.
func (l *Line) Read() (bool, error) {
	v, err := l.gpiodLine.Value()
	return v == 1, err
}

// Write sets the line to high (true) or low (false).
func (l *Line) Write(high bool) error {
	if high {
		return l.gpiodLine.SetValue(1)
	}
	return l.gpiodLine.SetValue(0)
}

// Close releases all resources held by the requested line.
func (l *Line) Close() error {
	return l.gpiodLine.Close()
}
