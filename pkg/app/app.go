package app

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"edgelog/pkg/app/config"
	"edgelog/pkg/buffer"
	"edgelog/pkg/mqtt"
	"edgelog/pkg/raspberry"
	"edgelog/pkg/sensor"
	"edgelog/pkg/sink"
	"edgelog/pkg/syncengine"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// App is the main application struct.
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

	// gpio is the handler to the gpio lines
	gpio raspberry.GPIO
	// emulated is set if the gpio lines are emulated
	emulated *raspberry.Emulated
	// lines are the requested gpio lines (connectivity switch, status led)
	lines []io.Closer

	// sensors are the handlers of the environment sensor and the accelerometer
	env   syncengine.Environment
	accel syncengine.Accelerometer
	// closers are the sensor and sink handlers which must be closed on exit
	closers []io.Closer

	// buffer is the local buffer of records while offline
	buffer *buffer.Buffer

	// engine is the sync engine (control loop)
	engine *syncengine.Engine

	// running is set if the engine is started
	running bool
	// quit stops the engine
	quit chan struct{}
	// done signals the engine is stopped
	done chan struct{}
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:   mqtt.New(),
		buffer: buffer.New(config.Buffer.File, config.Buffer.MaxBytes),

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}, err
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()

	app.running = true
	go func() {
		defer close(app.done)
		app.engine.Run(app.config.PollInterval, app.quit)
	}()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	if err = os.MkdirAll(filepath.Dir(app.config.Buffer.File), 0o755); err != nil {
		debug.ErrorLog.Printf("can't create buffer directory: %v", err)
		return err
	}

	if err = app.initGpio(); err != nil {
		return err
	}

	if err = app.initSensors(); err != nil {
		return err
	}

	if app.config.Connectivity.Source == "mqtt" || app.config.Sink.Type == "mqtt" {
		if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
			debug.ErrorLog.Printf("can't open mqtt broker %v", err)
			return err
		}
	}

	oracle, led, err := app.initConnectivity()
	if err != nil {
		return err
	}

	s, err := app.initSink()
	if err != nil {
		return err
	}

	app.engine = syncengine.New(syncengine.Config{
		Environment:   app.env,
		Accelerometer: app.accel,
		Oracle:        oracle,
		Indicator:     led,
		Sink:          s,
		Store:         app.buffer,
		Interval:      app.config.Interval,
	})

	// initDefaultRoutes should be always called last because it may access things like app.engine
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

func (app *App) initGpio() (err error) {
	c := app.config.Gpio

	if app.gpio, err = raspberry.Open(c.Driver, c.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio: %v", err)
		return err
	}

	if e, ok := app.gpio.(*raspberry.Emulated); ok {
		app.emulated = e
	}

	return nil
}

// initConnectivity requests the gpio lines and returns the connectivity oracle and the status led.
func (app *App) initConnectivity() (syncengine.Oracle, syncengine.Indicator, error) {
	c := app.config.Gpio

	out, err := app.gpio.NewOutput(c.LED)
	if err != nil {
		debug.ErrorLog.Printf("can't open led pin %v: %v", c.LED, err)
		return nil, nil, err
	}
	app.lines = append(app.lines, out)
	led := raspberry.LED{Output: out}

	if app.config.Connectivity.Source == "mqtt" {
		return app.mqtt, led, nil
	}

	in, err := app.gpio.NewInput(c.Connectivity, c.Pull)
	if err != nil {
		debug.ErrorLog.Printf("can't open connectivity pin %v: %v", c.Connectivity, err)
		return nil, nil, err
	}
	app.lines = append(app.lines, in)

	return raspberry.Switch{Input: in}, led, nil
}

func (app *App) initSensors() error {
	c := app.config.Sensors

	if c.Emulated {
		e := &sensor.Emulated{}
		app.env, app.accel = e, e
		return nil
	}

	app.env = sensor.NewDHT22(c.DHT22.Device)

	m, err := sensor.OpenMPU6050(c.MPU6050.Bus, c.MPU6050.Address)
	if err != nil {
		debug.ErrorLog.Printf("can't open mpu6050: %v", err)
		return err
	}
	app.accel = m
	app.closers = append(app.closers, m)

	return nil
}

func (app *App) initSink() (syncengine.Sink, error) {
	switch app.config.Sink.Type {
	case "mqtt":
		return mqtt.NewSink(app.mqtt, app.config.MQTT.Topic, app.config.MQTT.Qos), nil
	case "serial":
		s, err := sink.Open(app.config.Sink.Device)
		if err != nil {
			debug.ErrorLog.Printf("can't open sink device %q: %v", app.config.Sink.Device, err)
			return nil, err
		}
		app.closers = append(app.closers, s)
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported sink type %q", app.config.Sink.Type)
	}
}

// Close stops the engine and releases all resources.
func (app *App) Close() error {
	if app.running {
		close(app.quit)
		<-app.done
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.mqtt != nil {
		_ = app.mqtt.Disconnect()
	}

	for _, c := range app.closers {
		_ = c.Close()
	}
	for _, l := range app.lines {
		_ = l.Close()
	}
	if app.gpio != nil {
		_ = app.gpio.Close()
	}

	return nil
}
