package app

import (
	"encoding/json"
	"time"

	"rc5rx/pkg/mqtt"
	"rc5rx/pkg/rc5"

	"github.com/womat/debug"
)

// frameMessage is the payload of the mqtt message and the data web service.
type frameMessage struct {
	Time time.Time `json:"time"`
	rc5.Frame
}

// startService starts the frame service, Close waits for it.
func (app *App) startService() {
	app.serving = true
	go app.service()
}

// service waits for decoded frames until the receiver is closed.
func (app *App) service() {
	defer close(app.shutdown)

	for raw := range app.receiver.C {
		app.handleFrame(raw, time.Now())
	}
	debug.InfoLog.Print("frame service stopped")
}

// handleFrame splits the raw frame into its fields, keeps it as last frame
// and sends it to the mqtt broker.
func (app *App) handleFrame(raw uint32, t time.Time) {
	// widths other than 13 bits are passed through raw
	f, _ := rc5.ParseFrame(raw, app.decoder.Width())
	debug.DebugLog.Printf("Packet RX: %v", f)

	app.last.Lock()
	app.last.frame = f
	app.last.time = t
	app.last.received = true
	app.last.Unlock()

	app.sendMQTT(app.config.MQTT.Topic, frameMessage{Time: t, Frame: f})
}

// sendMQTT queues the message struct for the mqtt broker.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	b, err := json.Marshal(message)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	if err = app.mqtt.Publish(mqtt.Message{Qos: 0, Retained: true, Topic: topic, Payload: b}); err != nil {
		debug.ErrorLog.Printf("sendMQTT %v: %v", topic, err)
	}
}
