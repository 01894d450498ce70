// Package sensor reads the environment sensor (DHT22) and the accelerometer (MPU6050).
package sensor

import "errors"

var (
	// ErrSensorRead is returned if a sensor didn't deliver valid data.
	ErrSensorRead = errors.New("sensor read failed")
	// ErrUnsupported is returned if the bus isn't available on this platform.
	ErrUnsupported = errors.New("unsupported platform")
)
