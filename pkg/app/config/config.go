package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"
	"rc5rx/pkg/raspberry"
	"rc5rx/pkg/rc5"
)

// ErrInvalidConfig is returned if the configuration can't be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Chip       string          `yaml:"chip"`
	Gpio       int             `yaml:"gpio"`
	Terminator string          `yaml:"terminator"`
	ActiveLow  bool            `yaml:"activelow"`
	TxGuard    TxGuardConfig   `yaml:"txguard"`
	RC5        RC5Config       `yaml:"rc5"`
	Timing     rc5.Timing      `yaml:"-"`
	Flag       FlagConfig      `yaml:"-"`
	Debug      DebugConfig     `yaml:"debug"`
	Webserver  WebserverConfig `yaml:"webserver"`
	MQTT       MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	ConfigFile string
	LogLevel   string
}

// TxGuardConfig defines the pin signalling an active IR transmitter, 0 disables the guard.
type TxGuardConfig struct {
	Gpio int `yaml:"gpio"`
}

// RC5Config defines the decoder timing, all times in µs.
type RC5Config struct {
	TickFrequency uint32 `yaml:"tickfrequency"`
	HalfBit       int    `yaml:"halfbit"`
	Tolerance     int    `yaml:"tolerance"`
	Timeout       int    `yaml:"timeout"`
	Width         int    `yaml:"width"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection string `yaml:"connection"`
	Topic      string `yaml:"topic"`
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
		Chip:       "gpiochip0",
		Gpio:       17,
		Terminator: raspberry.PullUp,
		ActiveLow:  true,
		RC5: RC5Config{
			TickFrequency: rc5.TickFrequency,
			HalfBit:       int(rc5.HalfBit / time.Microsecond),
			Tolerance:     int(rc5.Tolerance / time.Microsecond),
			Timeout:       int(rc5.SignalTimeout / time.Microsecond),
			Width:         rc5.LegacyWidth,
		},
		Timing: rc5.DefaultTiming(),
		Flag:   FlagConfig{},
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
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection: "",
			Topic:      "rc5rx/frame"},
	}
}

// LoadConfig reads the configuration file, applies the flags and opens the debug file.
func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if err := c.apply(); err != nil {
		return err
	}

	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	return nil
}

// apply overrides file values with flags and converts the raw values.
func (c *Config) apply() error {
	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}

	c.Timing = rc5.Timing{
		TickFrequency: c.RC5.TickFrequency,
		HalfBit:       time.Duration(c.RC5.HalfBit) * time.Microsecond,
		Tolerance:     time.Duration(c.RC5.Tolerance) * time.Microsecond,
		Timeout:       time.Duration(c.RC5.Timeout) * time.Microsecond,
		Width:         c.RC5.Width,
	}

	if _, err := c.Timing.Thresholds(); err != nil {
		return fmt.Errorf("rc5 timing %+v: %w", c.RC5, ErrInvalidConfig)
	}

	line := raspberry.LineConfig{Gpio: c.Gpio, Terminator: c.Terminator, ActiveLow: c.ActiveLow}
	if err := line.Validate(); err != nil {
		return fmt.Errorf("%v: %w", err, ErrInvalidConfig)
	}

	return nil
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

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	case "standard":
		c.Debug.Flag = debug.Standard
	default:
		return fmt.Errorf("log level %q: %w", c.Debug.FlagString, ErrInvalidConfig)
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
