// Package mqtt sends record lines to a mqtt broker.
package mqtt

import (
	"sync"
	"sync/atomic"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// queueSize is the number of messages which can be queued, further messages are dropped by Emit.
	queueSize = 1024
	// publishTimeout is the max time to wait for a publish token.
	publishTimeout = 10 * time.Second
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	handler mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	C chan Message
	// done is closed when Service returns
	done    chan struct{}
	serving atomic.Bool
	once    sync.Once
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generate a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C:    make(chan Message, queueSize),
		done: make(chan struct{}),
	}
}

// Connect connects to the mqtt broker.
// If no broker is defined, no mqtt message are send.
// The client reconnects automatically, a broker which isn't reachable at start isn't an error.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	m.handler = mqttlib.NewClient(opts)

	t := m.handler.Connect()
	go func() {
		<-t.Done()
		if err := t.Error(); err != nil {
			debug.ErrorLog.Printf("can't connect to mqtt broker %v: %v", broker, err)
		}
	}()
	return nil
}

// IsConnected returns true if there is a connection to the broker.
// It is used as connectivity state if the uplink is the broker itself.
func (m *Handler) IsConnected() bool {
	return m.handler != nil && m.handler.IsConnectionOpen()
}

// IsOnline is the same as IsConnected.
func (m *Handler) IsOnline() bool {
	return m.IsConnected()
}

// Disconnect stops the Service and ends the connection to the broker.
func (m *Handler) Disconnect() error {
	m.once.Do(func() { close(m.C) })
	if m.serving.Load() {
		<-m.done
	}

	if m.handler == nil {
		return nil
	}

	m.handler.Disconnect(quiesce)
	return nil
}

// Service listen to a message on the channel C and send the message to mqtt.
// The messages are published one after the other to keep the order of the records.
// If no handler or topic is defined, the message will be ignored.
func (m *Handler) Service() {
	m.serving.Store(true)
	defer close(m.done)

	for msg := range m.C {
		if m.handler == nil || msg.Topic == "" {
			continue
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		// paho keeps the order of the publish calls, the token is checked in the background
		t := m.handler.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		go func(topic string) {
			if !t.WaitTimeout(publishTimeout) {
				debug.ErrorLog.Printf("publishing topic %v: timeout after %v", topic, publishTimeout)
				return
			}
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}

// Sink sends each record line as message to a topic.
type Sink struct {
	h     *Handler
	topic string
	qos   byte
	// dropped counts the lines which couldn't be queued.
	dropped atomic.Int64
}

// NewSink generates a sink publishing to the topic of the broker handler.
func NewSink(h *Handler, topic string, qos byte) *Sink {
	return &Sink{h: h, topic: topic, qos: qos}
}

// Emit queues the line for publishing. There is no acknowledgment.
// Emit never blocks: if the queue is full, e.g. the broker is down for a long time, the line is dropped.
func (s *Sink) Emit(line string) {
	select {
	case s.h.C <- Message{Topic: s.topic, Payload: []byte(line), Qos: s.qos}:
	default:
		s.dropped.Add(1)
		debug.WarningLog.Printf("mqtt queue is full, record %q is dropped", line)
	}
}

// Dropped returns the number of lines which couldn't be queued.
func (s *Sink) Dropped() int {
	return int(s.dropped.Load())
}
