package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
)

// Config holds the application configuration.
// Config defines the struct of global config and the struct of the configuration file.
type Config struct {
	IntervalInt     int                `yaml:"interval"`
	Interval        time.Duration      `yaml:"-"`
	PollIntervalInt int                `yaml:"pollinterval"`
	PollInterval    time.Duration      `yaml:"-"`
	Flag            FlagConfig         `yaml:"-"`
	Buffer          BufferConfig       `yaml:"buffer"`
	Gpio            GpioConfig         `yaml:"gpio"`
	Sensors         SensorsConfig      `yaml:"sensors"`
	Connectivity    ConnectivityConfig `yaml:"connectivity"`
	Sink            SinkConfig         `yaml:"sink"`
	Debug           DebugConfig        `yaml:"debug"`
	Webserver       WebserverConfig    `yaml:"webserver"`
	MQTT            MQTTConfig         `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	Debug      string
	ConfigFile string
}

// BufferConfig defines the local buffer file and its size limit in bytes.
type BufferConfig struct {
	File     string `yaml:"file"`
	MaxBytes int64  `yaml:"maxbytes"`
}

// GpioConfig defines the gpio driver and the BCM numbers of the connectivity switch and the status led.
type GpioConfig struct {
	Driver       string `yaml:"driver"`
	Chip         string `yaml:"chip"`
	Connectivity int    `yaml:"connectivity"`
	Pull         string `yaml:"pull"`
	LED          int    `yaml:"led"`
}

// SensorsConfig defines the sensor devices.
// If Emulated is set, no hardware is accessed.
type SensorsConfig struct {
	Emulated bool          `yaml:"emulated"`
	DHT22    DHT22Config   `yaml:"dht22"`
	MPU6050  MPU6050Config `yaml:"mpu6050"`
}

// DHT22Config defines the iio device directory of the dht22.
type DHT22Config struct {
	Device string `yaml:"device"`
}

// MPU6050Config defines the i2c bus device and the i2c address of the mpu6050.
type MPU6050Config struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// ConnectivityConfig defines the source of the connectivity state (gpio|mqtt).
type ConnectivityConfig struct {
	Source string `yaml:"source"`
}

// SinkConfig defines where the records are sent to (serial|mqtt).
// Device is used by the serial sink (stdout|stderr|<device or file>).
type SinkConfig struct {
	Type   string `yaml:"type"`
	Device string `yaml:"device"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	ClientID   string `yaml:"clientid"`
	Topic      string `yaml:"topic"`
	Qos        byte   `yaml:"qos"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		IntervalInt:     2000,
		PollIntervalInt: 100,
		Flag:            FlagConfig{},
		Buffer: BufferConfig{
			File:     "/var/lib/edgelog/buffer.csv",
			MaxBytes: 200 * 1024,
		},
		Gpio: GpioConfig{
			Driver:       "gpiod",
			Chip:         "gpiochip0",
			Connectivity: 4,
			Pull:         "pulldown",
			LED:          2,
		},
		Sensors: SensorsConfig{
			DHT22:   DHT22Config{Device: "/sys/bus/iio/devices/iio:device0"},
			MPU6050: MPU6050Config{Bus: "/dev/i2c-1", Address: 0x68},
		},
		Connectivity: ConnectivityConfig{Source: "gpio"},
		Sink:         SinkConfig{Type: "serial", Device: "stdout"},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "tcp://127.0.0.1:1883",
			ClientID:   "edgelog",
			Topic:      "edgelog/records",
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.Debug != "" {
		c.Debug.FlagString = c.Flag.Debug
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	c.Interval = time.Duration(c.IntervalInt) * time.Millisecond
	c.PollInterval = time.Duration(c.PollIntervalInt) * time.Millisecond

	return c.validate()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

func (c *Config) validate() error {
	switch {
	case c.Interval <= 0:
		return fmt.Errorf("invalid interval %d ms", c.IntervalInt)
	case c.PollInterval <= 0:
		return fmt.Errorf("invalid pollinterval %d ms", c.PollIntervalInt)
	case c.Buffer.File == "":
		return fmt.Errorf("no buffer file defined")
	case c.Buffer.MaxBytes <= 0:
		return fmt.Errorf("invalid buffer maxbytes %d", c.Buffer.MaxBytes)
	}

	switch c.Connectivity.Source {
	case "gpio", "mqtt":
	default:
		return fmt.Errorf("unsupported connectivity source %q (gpio|mqtt)", c.Connectivity.Source)
	}

	switch c.Sink.Type {
	case "serial", "mqtt":
	default:
		return fmt.Errorf("unsupported sink type %q (serial|mqtt)", c.Sink.Type)
	}

	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
