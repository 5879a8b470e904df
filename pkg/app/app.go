package app

import (
	"net/url"
	"sync"
	"time"

	"rc5rx/pkg/app/config"
	"rc5rx/pkg/capture"
	"rc5rx/pkg/mqtt"
	"rc5rx/pkg/raspberry"
	"rc5rx/pkg/rc5"
	"rc5rx/pkg/txguard"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/womat/debug"
)

// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip and line are the gpio character device and the IR receiver line
	chip *raspberry.Chip
	line *raspberry.Line

	// guard disables the decoder while the local transmitter is active
	guard *txguard.Pin

	// decoder is the rc5 state machine, receiver feeds it with line events
	decoder  *rc5.Decoder
	receiver *capture.Receiver

	// metrics is the prometheus registry served on /metrics
	metrics *prometheus.Registry

	// last is the last received frame
	last lastFrame

	// serving is set when the frame service is started
	serving bool
	// shutdown is closed when the frame service stops, e.g. because the line was closed
	shutdown chan struct{}
}

// lastFrame holds the last received frame for the data web service.
type lastFrame struct {
	sync.RWMutex
	frame    rc5.Frame
	time     time.Time
	received bool
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	d, err := rc5.New(config.Timing)
	if err != nil {
		debug.ErrorLog.Printf("can't create rc5 decoder: %v", err)
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		decoder: d,
		metrics: newMetrics(d),
		web:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:    mqtt.New(),

		shutdown: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	app.startService()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if app.chip, err = raspberry.Open(app.config.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio chip %v: %v", app.config.Chip, err)
		return err
	}

	lc := raspberry.LineConfig{Gpio: app.config.Gpio, Terminator: app.config.Terminator, ActiveLow: app.config.ActiveLow}
	if app.line, err = app.chip.NewLine(lc); err != nil {
		debug.ErrorLog.Printf("can't open line %v: %v", app.config.Gpio, err)
		return err
	}

	app.receiver = capture.New(app.line.C, app.decoder, app.config.Timing)

	if app.config.TxGuard.Gpio > 0 {
		if app.guard, err = txguard.Open(app.config.TxGuard.Gpio, app.decoder); err != nil {
			debug.ErrorLog.Printf("can't watch transmitter pin %v: %v", app.config.TxGuard.Gpio, err)
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, MODULE); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// Shutdown returns a channel which is closed when the app stops receiving frames.
// It's used to terminate the program if the line is lost (see cmd/rc5rx.go).
func (app *App) Shutdown() <-chan struct{} {
	return app.shutdown
}

// Close releases all resources. The line is closed before the receiver,
// a pending line event is still taken by the receiver.
// The mqtt handler is closed after the frame service has stopped, so queued frames are still sent.
func (app *App) Close() error {
	if app.guard != nil {
		_ = app.guard.Close()
	}

	if app.line != nil {
		_ = app.line.Close()
	}

	if app.receiver != nil {
		_ = app.receiver.Close()
		if app.serving {
			<-app.shutdown
		}
	}

	if app.chip != nil {
		_ = app.chip.Close()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Close()
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}
	return nil
}
