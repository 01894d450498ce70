package record

import (
	"errors"
	"math"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		r      Reading
		online bool
		want   string
	}{
		{
			name:   "all sensors valid offline",
			r:      Reading{Timestamp: 4000, Temperature: 23.5, Humidity: 61.2, EnvValid: true, AccelX: 0.012, AccelY: -0.003, AccelZ: 0.998, AccelValid: true},
			online: false,
			want:   "4000,23.50,61.20,0.012,-0.003,0.998,0",
		},
		{
			name:   "accelerometer failed",
			r:      Reading{Timestamp: 2000, Temperature: -4.256, Humidity: 99.999, EnvValid: true},
			online: true,
			want:   "2000,-4.26,100.00,NaN,NaN,NaN,1",
		},
		{
			name:   "zero acceleration is a valid reading",
			r:      Reading{Timestamp: 6000, AccelValid: true},
			online: true,
			want:   "6000,NaN,NaN,0.000,0.000,0.000,1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.r, tt.online); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	readings := []Reading{
		{Timestamp: 0, Temperature: 21.1234, Humidity: 45.678, EnvValid: true, AccelX: 1.23456, AccelY: -0.0004, AccelZ: -1.9999, AccelValid: true},
		{Timestamp: 123456789, Temperature: -40, Humidity: 0, EnvValid: true},
		{Timestamp: 42, AccelX: 0.5, AccelY: 0.25, AccelZ: 0.125, AccelValid: true},
		{Timestamp: 7},
	}

	for _, r := range readings {
		for _, online := range []bool{true, false} {
			line := Encode(r, online)
			got, err := Decode(line)
			if err != nil {
				t.Fatalf("Decode(%q): %v", line, err)
			}

			if got.Online != online {
				t.Errorf("%q: Online = %v, want %v", line, got.Online, online)
			}
			if got.Timestamp != r.Timestamp {
				t.Errorf("%q: Timestamp = %d, want %d", line, got.Timestamp, r.Timestamp)
			}
			if got.EnvValid != r.EnvValid || got.AccelValid != r.AccelValid {
				t.Errorf("%q: validity = %v/%v, want %v/%v", line, got.EnvValid, got.AccelValid, r.EnvValid, r.AccelValid)
			}
			if r.EnvValid {
				assertRounded(t, "Temperature", got.Temperature, r.Temperature, 0.005)
				assertRounded(t, "Humidity", got.Humidity, r.Humidity, 0.005)
			}
			if r.AccelValid {
				assertRounded(t, "AccelX", got.AccelX, r.AccelX, 0.0005)
				assertRounded(t, "AccelY", got.AccelY, r.AccelY, 0.0005)
				assertRounded(t, "AccelZ", got.AccelZ, r.AccelZ, 0.0005)
			}

			if again := got.Encode(); again != line {
				t.Errorf("re-encoded %q, want %q", again, line)
			}
		}
	}
}

func assertRounded(t *testing.T, field string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance+1e-9 {
		t.Errorf("%s = %v, want %v (±%v)", field, got, want, tolerance)
	}
}

func TestDecodeTrimsWhitespace(t *testing.T) {
	got, err := Decode("  4000,23.50,61.20,0.012,-0.003,0.998,0\r\n")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Timestamp != 4000 || got.Temperature != 23.5 || got.AccelZ != 0.998 || got.Online {
		t.Errorf("Decode = %+v", got)
	}
}

func TestDecodeLowercaseSentinel(t *testing.T) {
	got, err := Decode("4000,nan,nan,0.012,-0.003,0.998,0")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.EnvValid || !got.AccelValid || got.AccelX != 0.012 {
		t.Errorf("Decode = %+v, want invalid environment, valid acceleration", got)
	}
	if line := got.Encode(); line != "4000,NaN,NaN,0.012,-0.003,0.998,0" {
		t.Errorf("Encode = %q", line)
	}
}

func TestDecodeMalformed(t *testing.T) {
	lines := map[string]string{
		"empty":                      "",
		"too few fields":             "4000,23.50,61.20,0.012,-0.003,0",
		"too many fields":            "4000,23.50,61.20,0.012,-0.003,0.998,0,1",
		"timestamp isn't an integer": "4.5,23.50,61.20,0.012,-0.003,0.998,0",
		"temperature isn't a number": "4000,warm,61.20,0.012,-0.003,0.998,0",
		"partially invalid accel":    "4000,23.50,61.20,NaN,-0.003,0.998,0",
		"partially invalid env":      "4000,NaN,61.20,0.012,-0.003,0.998,0",
		"infinite value":             "4000,+Inf,61.20,0.012,-0.003,0.998,0",
		"invalid online flag":        "4000,23.50,61.20,0.012,-0.003,0.998,yes",
		"sync marker":                "=== SINCRONIZACAO_INICIO ===",
	}

	for name, line := range lines {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(line); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("Decode(%q) error = %v, want %v", line, err, ErrMalformedRecord)
			}
		})
	}
}
