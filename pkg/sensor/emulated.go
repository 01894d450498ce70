package sensor

import "math"

// Emulated delivers plausible sensor values without hardware, e.g. for development on a desktop.
// The values oscillate slowly with the number of reads.
type Emulated struct {
	n int
}

// ReadEnvironment returns a temperature around 23°C and a humidity around 60%.
func (e *Emulated) ReadEnvironment() (temperature, humidity float64, err error) {
	e.n++
	phase := float64(e.n) / 30
	return 23 + 2*math.Sin(phase), 60 - 5*math.Sin(phase), nil
}

// ReadAccel returns a device at rest with a little noise on the x and y axis.
func (e *Emulated) ReadAccel() (x, y, z float64, err error) {
	phase := float64(e.n)
	return 0.01 * math.Sin(phase), 0.01 * math.Cos(phase), 1, nil
}

// Close does nothing.
func (e *Emulated) Close() error {
	return nil
}
