package raspberry

import (
	"errors"
	"testing"
)

var errLine = errors.New("line released")

type brokenLine struct{}

func (brokenLine) Read() (bool, error) { return true, errLine }
func (brokenLine) Write(bool) error    { return errLine }
func (brokenLine) Close() error        { return nil }

func TestSwitchFollowsLineLevel(t *testing.T) {
	e := NewEmulated()
	in, err := e.NewInput(4, "pulldown")
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	s := Switch{in}

	if s.IsOnline() {
		t.Error("IsOnline() = true with pulldown terminator, want false")
	}

	e.Set(4, true)
	if !s.IsOnline() {
		t.Error("IsOnline() = false with high level, want true")
	}

	e.Set(4, false)
	if s.IsOnline() {
		t.Error("IsOnline() = true with low level, want false")
	}
}

func TestSwitchReadErrorIsOffline(t *testing.T) {
	if (Switch{brokenLine{}}).IsOnline() {
		t.Error("IsOnline() = true for an unreadable line, want false")
	}
}

func TestLEDSetStatus(t *testing.T) {
	e := NewEmulated()
	out, err := e.NewOutput(2)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	led := LED{out}

	led.SetStatus(true)
	if !e.Level(2) {
		t.Error("led level = low after SetStatus(true)")
	}

	// idempotent
	led.SetStatus(true)
	led.SetStatus(false)
	if e.Level(2) {
		t.Error("led level = high after SetStatus(false)")
	}

	// a broken line must not panic
	LED{brokenLine{}}.SetStatus(true)
}

func TestEmulatedPinAlreadyUsed(t *testing.T) {
	e := NewEmulated()

	l, err := e.NewInput(4, "none")
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	if _, err = e.NewOutput(4); err == nil {
		t.Error("NewOutput on a used pin succeeded")
	}

	_ = l.Close()
	if _, err = e.NewOutput(4); err != nil {
		t.Errorf("NewOutput after Close: %v", err)
	}
}

func TestInvalidTerminator(t *testing.T) {
	if _, err := NewEmulated().NewInput(4, "floating"); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("NewInput error = %v, want %v", err, ErrInvalidParam)
	}
}

func TestEmulatedPullup(t *testing.T) {
	e := NewEmulated()
	in, err := e.NewInput(17, "pullup")
	if err != nil {
		t.Fatalf("NewInput: %v", err)
	}
	if v, _ := in.Read(); !v {
		t.Error("pullup line reads low, want high")
	}
}
