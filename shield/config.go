package shield

import (
	"log/slog"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
)

// NetworkConfig selects the operator profile and packet data context the
// bring-up drives the modem toward. It is read by the network state machine
// only.
type NetworkConfig struct {
	// APN is the access point name for the PDP context. Empty skips PDP
	// configuration.
	APN string
	// MNO is the operator profile written to +UMNOPROF.
	MNO at.MNOProfile
	// PDP is the address family for the default PDP context.
	PDP at.PDPType
}

// Stock configurations for the SIM cards the shield commonly ships with.
var (
	ConfigVerizon  = NetworkConfig{APN: "vzwinternet", MNO: at.MNOVerizon, PDP: at.PDPIPv4v6}
	ConfigHologram = NetworkConfig{APN: "hologram", MNO: at.MNOAuto, PDP: at.PDPIPv4}
)

// Config carries everything a Shield needs. Build one with NewConfigBuilder.
type Config struct {
	Dialer Dialer
	GPIO   GPIO
	Clock  Clock
	Logger *slog.Logger

	// PowerPin drives the modem's power key.
	PowerPin Pin
	// PowerDetectPin reads the modem's power indicator. Only meaningful
	// when HasPowerDetect is set; boards without the indicator fall back to
	// fixed settle delays.
	PowerDetectPin Pin
	HasPowerDetect bool
	// ResetPin drives the modem's hardware reset line, when wired.
	ResetPin    Pin
	HasResetPin bool

	Network NetworkConfig
	// Timeout is the session-wide default for command replies. Values of
	// 10s or more are recommended; network commands run long.
	Timeout time.Duration
	Debug   DebugLevel
	// PollInterval is the granularity of the reader's busy-wait, so hosted
	// implementations yield between polls instead of spinning.
	PollInterval time.Duration
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if c.GPIO == nil {
		return ErrNoGPIO
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.PowerPin == 0 {
		c.PowerPin = DefaultPowerPin
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Millisecond
	}
	if c.Network == (NetworkConfig{}) {
		c.Network = ConfigHologram
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder preloaded with nothing; defaults are
// applied at Build time.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithGPIO(g GPIO) *ConfigBuilder {
	b.config.GPIO = g
	return b
}

func (b *ConfigBuilder) WithClock(c Clock) *ConfigBuilder {
	b.config.Clock = c
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithPowerPin(pin Pin) *ConfigBuilder {
	b.config.PowerPin = pin
	return b
}

func (b *ConfigBuilder) WithPowerDetectPin(pin Pin) *ConfigBuilder {
	b.config.PowerDetectPin = pin
	b.config.HasPowerDetect = true
	return b
}

func (b *ConfigBuilder) WithResetPin(pin Pin) *ConfigBuilder {
	b.config.ResetPin = pin
	b.config.HasResetPin = true
	return b
}

func (b *ConfigBuilder) WithNetwork(network NetworkConfig) *ConfigBuilder {
	b.config.Network = network
	return b
}

func (b *ConfigBuilder) WithTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.Timeout = timeout
	return b
}

func (b *ConfigBuilder) WithDebugLevel(level DebugLevel) *ConfigBuilder {
	b.config.Debug = level
	return b
}

func (b *ConfigBuilder) WithPollInterval(interval time.Duration) *ConfigBuilder {
	b.config.PollInterval = interval
	return b
}

// Build validates the assembled Config and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	config := b.config
	config.setDefaults()
	return config, nil
}
