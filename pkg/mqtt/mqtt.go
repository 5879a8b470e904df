// Package mqtt publishes decoded frames to an mqtt broker.
package mqtt

import (
	"errors"
	"sync"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/womat/debug"
)

const (
	// queueSize is the number of messages buffered while the broker is slow or reconnecting.
	queueSize = 16
	// quiesce is the number of milliseconds the client waits for pending work on disconnect.
	quiesce = 250
	// publishTimeout bounds the wait for a publish acknowledge.
	publishTimeout = 5 * time.Second
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("mqtt handler closed")

// ErrQueueFull is returned by Publish if the queue can't take another message.
var ErrQueueFull = errors.New("mqtt queue full")

// Message is one mqtt publication.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// Handler queues messages and publishes them from a single Service go routine.
// Without a broker the queue is drained and the messages are dropped.
type Handler struct {
	client mqttlib.Client

	queue chan Message

	mu      sync.Mutex
	closed  bool
	running bool
	// done is closed when a running Service has drained the queue
	done chan struct{}
}

// New creates a Handler without a broker connection.
func New() *Handler {
	return &Handler{
		queue: make(chan Message, queueSize),
		done:  make(chan struct{}),
	}
}

// Connect connects to the broker, e.g. tcp://127.0.0.1:1883.
// An empty broker leaves the Handler unconnected.
func (m *Handler) Connect(broker, module string) error {
	if broker == "" {
		debug.InfoLog.Print("no mqtt broker configured, frames are not published")
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(module + "-" + uuid.New().String()[:8]).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout).
		SetOnConnectHandler(func(mqttlib.Client) {
			debug.InfoLog.Printf("mqtt connected to %v", broker)
		}).
		SetConnectionLostHandler(func(_ mqttlib.Client, err error) {
			debug.ErrorLog.Printf("mqtt connection to %v lost: %v", broker, err)
		})

	m.client = mqttlib.NewClient(opts)
	t := m.client.Connect()
	<-t.Done()
	return t.Error()
}

// Publish queues msg. It doesn't block, a full queue drops the message.
func (m *Handler) Publish(msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	select {
	case m.queue <- msg:
		return nil
	default:
		return ErrQueueFull
	}
}

// Service publishes queued messages until Close is called.
// Only one Service may run per Handler.
func (m *Handler) Service() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	defer close(m.done)

	for msg := range m.queue {
		if m.client == nil || msg.Topic == "" {
			continue
		}
		m.send(msg)
	}
}

// send publishes one message, the client reconnects by itself.
func (m *Handler) send(msg Message) {
	if !m.client.IsConnectionOpen() {
		debug.DebugLog.Printf("mqtt broker isn't connected, message to %v dropped", msg.Topic)
		return
	}

	debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
	t := m.client.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)
	if !t.WaitTimeout(publishTimeout) {
		debug.ErrorLog.Printf("publishing topic %v: timeout", msg.Topic)
		return
	}
	if err := t.Error(); err != nil {
		debug.ErrorLog.Printf("publishing topic %v: %v", msg.Topic, err)
	}
}

// Close stops accepting messages, waits until a running Service has sent
// the queued ones and disconnects from the broker. Close is idempotent.
func (m *Handler) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	running := m.running
	m.mu.Unlock()

	if running {
		<-m.done
	}

	if m.client != nil {
		m.client.Disconnect(quiesce)
	}
	return nil
}
