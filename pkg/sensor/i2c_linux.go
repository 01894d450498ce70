//go:build linux

package sensor

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// i2cSlave is the ioctl request to set the slave address (linux/i2c-dev.h).
const i2cSlave = 0x0703

// I2C is a device on a linux i2c bus (/dev/i2c-*).
type I2C struct {
	fd int
}

// OpenI2C opens the bus device and selects the device address.
func OpenI2C(device string, address uint16) (*I2C, error) {
	fd, err := unix.Open(device, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", device, err)
	}

	if err = unix.IoctlSetInt(fd, i2cSlave, int(address)); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("set i2c address 0x%02x on %s: %w", address, device, err)
	}

	return &I2C{fd: fd}, nil
}

func (b *I2C) Read(p []byte) (int, error) {
	return unix.Read(b.fd, p)
}

func (b *I2C) Write(p []byte) (int, error) {
	return unix.Write(b.fd, p)
}

// Close the bus device.
func (b *I2C) Close() error {
	return unix.Close(b.fd)
}
