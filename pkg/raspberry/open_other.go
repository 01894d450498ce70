//go:build !linux

package raspberry

import (
	"fmt"

	"github.com/womat/debug"
)

// Open opens the gpio driver. Only the emulated driver is available on this platform.
func Open(driver, chip string) (GPIO, error) {
	switch driver {
	case DriverGpiod, DriverGpiomem:
		debug.WarningLog.Printf("gpio driver %q isn't supported on this platform, lines are emulated", driver)
		return NewEmulated(), nil
	case DriverEmulated:
		return NewEmulated(), nil
	default:
		return nil, fmt.Errorf("%w: gpio driver %q", ErrInvalidParam, driver)
	}
}
