//go:build !linux

package sensor

import "io"

// OpenI2C isn't supported, the i2c-dev interface is only available on linux.
func OpenI2C(device string, address uint16) (io.ReadWriteCloser, error) {
	return nil, ErrUnsupported
}
