package sensor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// measuring range of the DHT22
	tMax = 80
	tMin = -40
	hMax = 100
	hMin = 0

	temperatureFile = "in_temp_input"
	humidityFile    = "in_humidityrelative_input"
)

// DHT22 reads the DHT22 by the linux iio driver (device tree overlay dht11, e.g. dtoverlay=dht11,gpiopin=15).
// The driver provides the values in milli units.
type DHT22 struct {
	// device is the iio device directory, e.g. /sys/bus/iio/devices/iio:device0
	device string
}

// NewDHT22 generate a new handler for the iio device directory.
func NewDHT22(device string) *DHT22 {
	return &DHT22{device: device}
}

// ReadEnvironment returns the temperature (°C) and the relative humidity (%).
// The driver returns an i/o error if the checksum of the sensor data is wrong, this happens regularly.
func (d *DHT22) ReadEnvironment() (temperature, humidity float64, err error) {
	if temperature, err = readMilli(filepath.Join(d.device, temperatureFile)); err != nil {
		return 0, 0, err
	}
	if humidity, err = readMilli(filepath.Join(d.device, humidityFile)); err != nil {
		return 0, 0, err
	}

	if temperature > tMax || temperature < tMin || humidity > hMax || humidity < hMin {
		return 0, 0, fmt.Errorf("%w: dht22 values out of range (%v°C, %v%%)", ErrSensorRead, temperature, humidity)
	}

	return temperature, humidity, nil
}

// readMilli reads an iio channel file and converts the value from milli units.
func readMilli(file string) (float64, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSensorRead, err)
	}

	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSensorRead, file, err)
	}

	return float64(v) / 1000, nil
}
