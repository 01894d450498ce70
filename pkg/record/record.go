// Package record is the codec of the buffered line format.
// A record is one line of seven comma separated fields:
//
//	timestamp,temperature,humidity,accel_x,accel_y,accel_z,online
//	e.g. 4000,23.50,61.20,0.012,-0.003,0.998,0
package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedRecord is returned by Decode if a line doesn't match the record layout.
var ErrMalformedRecord = errors.New("malformed record")

const (
	// Invalid is written instead of a value, if the sensor couldn't be read.
	Invalid = "NaN"

	// fields is the number of fields of a record line.
	fields = 7
	// separator separates the fields of a record line.
	separator = ","

	online  = "1"
	offline = "0"
)

// Reading is one sample of both sensors.
type Reading struct {
	// Timestamp is the time of the sample in milliseconds since start.
	Timestamp int64
	// Temperature in °C and Humidity in %RH are only valid if EnvValid is set.
	Temperature float64
	Humidity    float64
	EnvValid    bool
	// AccelX, AccelY and AccelZ in g are only valid if AccelValid is set.
	AccelX     float64
	AccelY     float64
	AccelZ     float64
	AccelValid bool
}

// Record is a Reading with the connectivity state at capture time.
type Record struct {
	Reading
	Online bool
}

// Encode converts the reading and the connectivity flag to a record line (without line feed).
// Temperature and humidity are rounded to 2 decimal places, the acceleration to 3 decimal places.
func Encode(r Reading, isOnline bool) string {
	f := make([]string, 0, fields)
	f = append(f, strconv.FormatInt(r.Timestamp, 10))

	if r.EnvValid {
		f = append(f, formatFloat(r.Temperature, 2), formatFloat(r.Humidity, 2))
	} else {
		f = append(f, Invalid, Invalid)
	}

	if r.AccelValid {
		f = append(f, formatFloat(r.AccelX, 3), formatFloat(r.AccelY, 3), formatFloat(r.AccelZ, 3))
	} else {
		f = append(f, Invalid, Invalid, Invalid)
	}

	if isOnline {
		f = append(f, online)
	} else {
		f = append(f, offline)
	}

	return strings.Join(f, separator)
}

// Encode converts the record to a record line.
func (r Record) Encode() string {
	return Encode(r.Reading, r.Online)
}

// Decode parses a record line. Leading and trailing white spaces are ignored.
// A sensor group (environment or acceleration) is either completely valid or completely Invalid,
// a partially invalid group is a malformed record.
func Decode(line string) (Record, error) {
	var r Record

	f := strings.Split(strings.TrimSpace(line), separator)
	if len(f) != fields {
		return r, fmt.Errorf("%w: %d fields, want %d", ErrMalformedRecord, len(f), fields)
	}

	ts, err := strconv.ParseInt(f[0], 10, 64)
	if err != nil {
		return r, fmt.Errorf("%w: timestamp %q", ErrMalformedRecord, f[0])
	}
	r.Timestamp = ts

	env, valid, err := parseGroup(f[1:3])
	if err != nil {
		return r, fmt.Errorf("%w: environment: %v", ErrMalformedRecord, err)
	}
	if valid {
		r.Temperature, r.Humidity, r.EnvValid = env[0], env[1], true
	}

	acc, valid, err := parseGroup(f[3:6])
	if err != nil {
		return r, fmt.Errorf("%w: acceleration: %v", ErrMalformedRecord, err)
	}
	if valid {
		r.AccelX, r.AccelY, r.AccelZ, r.AccelValid = acc[0], acc[1], acc[2], true
	}

	switch f[6] {
	case online:
		r.Online = true
	case offline:
		r.Online = false
	default:
		return r, fmt.Errorf("%w: online flag %q", ErrMalformedRecord, f[6])
	}

	return r, nil
}

// parseGroup parses the values of one sensor.
// It returns valid == false if all values are Invalid, the sentinel is compared case insensitive.
func parseGroup(s []string) (values []float64, valid bool, err error) {
	invalid := 0
	for _, v := range s {
		if strings.EqualFold(v, Invalid) {
			invalid++
		}
	}

	switch invalid {
	case len(s):
		return nil, false, nil
	case 0:
	default:
		return nil, false, fmt.Errorf("partially invalid values %v", s)
	}

	values = make([]float64, len(s))
	for i, v := range s {
		if values[i], err = strconv.ParseFloat(v, 64); err != nil || math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			return nil, false, fmt.Errorf("value %q isn't a number", v)
		}
	}

	return values, true, nil
}

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}
