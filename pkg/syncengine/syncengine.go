// Package syncengine is the control loop of the data logger.
//
// Each tick the engine samples the connectivity state, drives the status indicator and,
// while online, drains the buffer to the sink. If the sample interval is elapsed,
// a new reading is taken and sent to the sink (online) or appended to the buffer (offline).
package syncengine

import (
	"errors"
	"sync"
	"time"

	"edgelog/pkg/buffer"
	"edgelog/pkg/record"

	"github.com/womat/debug"
)

// State is the connectivity state of a tick.
type State int

const (
	Offline State = iota
	Online
)

func (s State) String() string {
	if s == Online {
		return "online"
	}
	return "offline"
}

// Environment reads the temperature (°C) and humidity (%RH) sensor.
type Environment interface {
	ReadEnvironment() (temperature, humidity float64, err error)
}

// Accelerometer reads the acceleration (g) of all three axes at once.
type Accelerometer interface {
	ReadAccel() (x, y, z float64, err error)
}

// Oracle reports whether the uplink is currently available.
type Oracle interface {
	IsOnline() bool
}

// Indicator shows the connectivity state, e.g. a led.
type Indicator interface {
	SetStatus(on bool)
}

// Sink sends a record line to the cloud (fire and forget).
type Sink interface {
	Emit(line string)
}

// Store is the local buffer of records, see buffer.Buffer.
type Store interface {
	Append(line string) error
	DrainAndClear(emit func(line string)) (buffer.DrainResult, error)
}

// Status is a snapshot of the engine state.
type Status struct {
	State      string
	LastRecord string
	// Samples is the number of taken readings.
	Samples int
	// Live is the number of records sent directly to the sink.
	Live int
	// Buffered is the number of records appended to the buffer.
	Buffered int
	// Drained is the number of buffered records sent to the sink.
	Drained int
	// Malformed is the number of skipped buffered lines.
	Malformed int
	// SensorErrors counts failed sensor reads.
	SensorErrors int
	// StorageErrors counts failed buffer operations.
	StorageErrors int
}

// Engine is the context of the control loop.
// Tick must be called from one goroutine only, Status may be called concurrently.
type Engine struct {
	env    Environment
	accel  Accelerometer
	oracle Oracle
	led    Indicator
	sink   Sink
	store  Store

	// interval is the time between two samples.
	interval time.Duration
	// lastSample is the time of the last sample (since start).
	lastSample time.Duration

	status struct {
		sync.Mutex
		data Status
	}
}

// Config contains the collaborators and settings of an Engine.
type Config struct {
	Environment   Environment
	Accelerometer Accelerometer
	Oracle        Oracle
	Indicator     Indicator
	Sink          Sink
	Store         Store
	Interval      time.Duration
}

// New initials a new engine.
func New(c Config) *Engine {
	e := &Engine{
		env:      c.Environment,
		accel:    c.Accelerometer,
		oracle:   c.Oracle,
		led:      c.Indicator,
		sink:     c.Sink,
		store:    c.Store,
		interval: c.Interval,
	}
	e.status.data.State = Offline.String()
	return e
}

// Tick runs one iteration of the control loop. now is the monotonic time since start.
func (e *Engine) Tick(now time.Duration) {
	state := Offline
	if e.oracle.IsOnline() {
		state = Online
	}

	e.led.SetStatus(state == Online)
	e.update(func(s *Status) { s.State = state.String() })

	// the backlog is sent before the current sample to keep the causal order
	if state == Online {
		e.drain()
	}

	if now-e.lastSample < e.interval {
		return
	}
	e.lastSample = now

	line := record.Encode(e.sample(now), state == Online)
	debug.DebugLog.Printf("%s record: %s", state, line)

	if state == Online {
		e.sink.Emit(line)
		e.update(func(s *Status) { s.LastRecord = line; s.Samples++; s.Live++ })
		return
	}

	if err := e.store.Append(line); err != nil {
		debug.ErrorLog.Printf("record %q is lost: %v", line, err)
		e.update(func(s *Status) { s.LastRecord = line; s.Samples++; s.StorageErrors++ })
		return
	}
	e.update(func(s *Status) { s.LastRecord = line; s.Samples++; s.Buffered++ })
}

// Run calls Tick every poll interval until quit is closed.
func (e *Engine) Run(poll time.Duration, quit <-chan struct{}) {
	start := time.Now()
	t := time.NewTicker(poll)
	defer t.Stop()

	for {
		// time.Since uses the monotonic clock
		e.Tick(time.Since(start))

		select {
		case <-quit:
			return
		case <-t.C:
		}
	}
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.status.Lock()
	defer e.status.Unlock()
	return e.status.data
}

func (e *Engine) update(f func(s *Status)) {
	e.status.Lock()
	f(&e.status.data)
	e.status.Unlock()
}

// drain sends the buffered records to the sink.
func (e *Engine) drain() {
	res, err := e.store.DrainAndClear(e.sink.Emit)
	e.update(func(s *Status) { s.Drained += res.Emitted; s.Malformed += res.Malformed })

	switch {
	case err == nil:
	case errors.Is(err, buffer.ErrStorageDelete):
		debug.WarningLog.Printf("%v, %d records will be sent again", err, res.Emitted)
		e.update(func(s *Status) { s.StorageErrors++ })
	default:
		debug.ErrorLog.Printf("drain buffer: %v", err)
		e.update(func(s *Status) { s.StorageErrors++ })
	}
}

// sample reads both sensors. A failed sensor marks its values invalid.
func (e *Engine) sample(now time.Duration) record.Reading {
	r := record.Reading{Timestamp: now.Milliseconds()}
	var err error

	if r.Temperature, r.Humidity, err = e.env.ReadEnvironment(); err != nil {
		debug.ErrorLog.Printf("read environment sensor: %v", err)
		r.Temperature, r.Humidity = 0, 0
		e.update(func(s *Status) { s.SensorErrors++ })
	} else {
		r.EnvValid = true
	}

	if r.AccelX, r.AccelY, r.AccelZ, err = e.accel.ReadAccel(); err != nil {
		debug.ErrorLog.Printf("read accelerometer: %v", err)
		r.AccelX, r.AccelY, r.AccelZ = 0, 0, 0
		e.update(func(s *Status) { s.SensorErrors++ })
	} else {
		r.AccelValid = true
	}

	return r
}
