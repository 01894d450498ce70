package raspberry

import (
	"fmt"
	"sync"
)

// Emulated holds the levels of emulated lines.
type Emulated struct {
	sync.Mutex
	levels map[int]bool
	used   map[int]bool
}

// EmulatedLine is a line of the Emulated driver.
type EmulatedLine struct {
	e   *Emulated
	pin int
}

// NewEmulated generates a driver with all lines low.
func NewEmulated() *Emulated {
	return &Emulated{levels: map[int]bool{}, used: map[int]bool{}}
}

// NewInput requests a line as input, a pullup terminator sets the initial level to high.
func (e *Emulated) NewInput(pin int, terminator string) (Input, error) {
	if err := checkTerminator(terminator); err != nil {
		return nil, err
	}

	l, err := e.request(pin)
	if err != nil {
		return nil, err
	}

	e.Set(pin, terminator == "pullup")
	return l, nil
}

// NewOutput requests a line as output with low level.
func (e *Emulated) NewOutput(pin int) (Output, error) {
	l, err := e.request(pin)
	if err != nil {
		return nil, err
	}

	e.Set(pin, false)
	return l, nil
}

func (e *Emulated) request(pin int) (*EmulatedLine, error) {
	e.Lock()
	defer e.Unlock()

	if e.used[pin] {
		return nil, fmt.Errorf("pin %v already used", pin)
	}

	e.used[pin] = true
	return &EmulatedLine{e: e, pin: pin}, nil
}

// Close does nothing.
func (e *Emulated) Close() error {
	return nil
}

// Set emulates a level change of the pin.
func (e *Emulated) Set(pin int, high bool) {
	e.Lock()
	defer e.Unlock()
	e.levels[pin] = high
}

// Level returns the level of the pin.
func (e *Emulated) Level(pin int) bool {
	e.Lock()
	defer e.Unlock()
	return e.levels[pin]
}

// Read returns the level of the line.
func (l *EmulatedLine) Read() (bool, error) {
	return l.e.Level(l.pin), nil
}

// Write sets the level of the line.
func (l *EmulatedLine) Write(high bool) error {
	l.e.Set(l.pin, high)
	return nil
}

// Close releases the line.
func (l *EmulatedLine) Close() error {
	l.e.Lock()
	defer l.e.Unlock()
	delete(l.e.used, l.pin)
	return nil
}
