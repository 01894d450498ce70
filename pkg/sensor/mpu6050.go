package sensor

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/womat/debug"
)

const (
	// MPU6050Address is the default i2c address of the MPU6050 (AD0 low).
	MPU6050Address = 0x68

	// registers
	pwrMgmt1   = 0x6B
	accelXoutH = 0x3B

	// lsbPerG is the sensitivity of the default full scale range ±2g.
	lsbPerG = 16384.0
)

// MPU6050 reads the accelerometer of the MPU6050.
type MPU6050 struct {
	bus io.ReadWriteCloser
}

// OpenMPU6050 opens the i2c bus device (e.g. /dev/i2c-1) and wakes up the sensor.
// A sensor which doesn't respond isn't an error, the reads will fail instead.
func OpenMPU6050(device string, address uint16) (*MPU6050, error) {
	bus, err := OpenI2C(device, address)
	if err != nil {
		return nil, err
	}

	m := NewMPU6050(bus)
	if err = m.Wake(); err != nil {
		debug.WarningLog.Printf("mpu6050 doesn't respond on %s address 0x%02x: %v", device, address, err)
	}

	return m, nil
}

// NewMPU6050 generate a new handler for a connected bus.
func NewMPU6050(bus io.ReadWriteCloser) *MPU6050 {
	return &MPU6050{bus: bus}
}

// Wake clears the sleep bit of the power management register.
func (m *MPU6050) Wake() error {
	if _, err := m.bus.Write([]byte{pwrMgmt1, 0}); err != nil {
		return fmt.Errorf("%w: mpu6050 wake up: %v", ErrSensorRead, err)
	}
	return nil
}

// ReadAccel returns the acceleration of all three axis in g.
// Either all values are read or an error is returned.
func (m *MPU6050) ReadAccel() (x, y, z float64, err error) {
	if _, err = m.bus.Write([]byte{accelXoutH}); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: mpu6050 select register: %v", ErrSensorRead, err)
	}

	b := make([]byte, 6)
	if _, err = io.ReadFull(m.bus, b); err != nil {
		return 0, 0, 0, fmt.Errorf("%w: mpu6050 read: %v", ErrSensorRead, err)
	}

	x = float64(int16(binary.BigEndian.Uint16(b[0:2]))) / lsbPerG
	y = float64(int16(binary.BigEndian.Uint16(b[2:4]))) / lsbPerG
	z = float64(int16(binary.BigEndian.Uint16(b[4:6]))) / lsbPerG
	return x, y, z, nil
}

// Close the bus.
func (m *MPU6050) Close() error {
	return m.bus.Close()
}
