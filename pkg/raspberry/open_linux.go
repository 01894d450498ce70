//go:build linux

package raspberry

import "fmt"

// Open opens the gpio driver, chip is the character device name of the gpiod driver (e.g. gpiochip0).
func Open(driver, chip string) (GPIO, error) {
	switch driver {
	case DriverGpiod:
		c, err := OpenChip(chip)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverGpiomem:
		m, err := OpenMem()
		if err != nil {
			return nil, err
		}
		return m, nil
	case DriverEmulated:
		return NewEmulated(), nil
	default:
		return nil, fmt.Errorf("%w: gpio driver %q", ErrInvalidParam, driver)
	}
}
