package main

import (
	"flag"
	"os"
	"strconv"
)

// Config holds the bring-up daemon's configuration
type Config struct {
	// BindAddress is the address the status server listens on (e.g. "0.0.0.0:8080")
	BindAddress string
	// SerialPort is the path to the shield's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string
	// BaudRate is the baud rate for serial communication with the shield (e.g. 115200)
	BaudRate int
	// LogLevel sets the logging level (e.g. "none", "error", "warn", "info")
	LogLevel string
	// PowerPin is the GPIO line wired to the shield's power key
	PowerPin int
	// PowerDetectPin is the GPIO line wired to the power indicator; negative
	// means the board does not wire one
	PowerDetectPin int
	// ResetPin is the GPIO line wired to the reset line; negative means none
	ResetPin int
	// APN is the access point name for the PDP context
	APN string
	// MNO is the operator profile name (e.g. "auto", "verizon")
	MNO string
	// PDP is the PDP address family (e.g. "IP", "IPV4V6", "NONIP")
	PDP string
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.PowerPin = 5
		c.PowerDetectPin = -1
		c.ResetPin = -1
		c.APN = "hologram"
		c.MNO = "auto"
		c.PDP = "IP"
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if port := os.Getenv("SERIAL_PORT"); port != "" {
			c.SerialPort = port
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if pin := os.Getenv("POWER_PIN"); pin != "" {
			if p, err := strconv.Atoi(pin); err == nil {
				c.PowerPin = p
			}
		}

		if pin := os.Getenv("POWER_DETECT_PIN"); pin != "" {
			if p, err := strconv.Atoi(pin); err == nil {
				c.PowerDetectPin = p
			}
		}

		if pin := os.Getenv("RESET_PIN"); pin != "" {
			if p, err := strconv.Atoi(pin); err == nil {
				c.ResetPin = p
			}
		}

		if apn := os.Getenv("APN"); apn != "" {
			c.APN = apn
		}

		if mno := os.Getenv("MNO_PROFILE"); mno != "" {
			c.MNO = mno
		}

		if pdp := os.Getenv("PDP_TYPE"); pdp != "" {
			c.PDP = pdp
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "power-pin":
				if p, err := strconv.Atoi(f.Value.String()); err == nil {
					c.PowerPin = p
				}
			case "power-detect-pin":
				if p, err := strconv.Atoi(f.Value.String()); err == nil {
					c.PowerDetectPin = p
				}
			case "reset-pin":
				if p, err := strconv.Atoi(f.Value.String()); err == nil {
					c.ResetPin = p
				}
			case "apn":
				c.APN = f.Value.String()
			case "mno":
				c.MNO = f.Value.String()
			case "pdp":
				c.PDP = f.Value.String()
			}
		})
		return nil
	}
}
