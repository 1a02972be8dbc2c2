package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OPEnSLab-OSU/CellularShieldDriver/at"
	"github.com/OPEnSLab-OSU/CellularShieldDriver/shield"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the shield")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the status server")
	flag.String("log-level", "info", "Log level (none, error, warn, info)")
	flag.Int("power-pin", 5, "GPIO line wired to the shield's power key")
	flag.Int("power-detect-pin", -1, "GPIO line wired to the power indicator (-1 if not wired)")
	flag.Int("reset-pin", -1, "GPIO line wired to the reset line (-1 if not wired)")
	flag.String("apn", "hologram", "Access point name for the PDP context")
	flag.String("mno", "auto", "MNO profile (auto, att, verizon, ...)")
	flag.String("pdp", "IP", "PDP type (IP, IPV6, IPV4V6, NONIP, NONE)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	debugLevel := shield.ParseDebugLevel(config.LogLevel)
	logLevel := slog.LevelInfo
	switch debugLevel {
	case shield.DebugInfo:
		logLevel = slog.LevelDebug
	case shield.DebugWarn:
		logLevel = slog.LevelWarn
	case shield.DebugError, shield.DebugNone:
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	mno, err := at.ParseMNOProfile(config.MNO)
	if err != nil {
		logger.Error("Invalid MNO profile", "error", err)
		os.Exit(1)
	}
	pdp, err := at.ParsePDPType(config.PDP)
	if err != nil {
		logger.Error("Invalid PDP type", "error", err)
		os.Exit(1)
	}

	builder := shield.NewConfigBuilder().
		WithDialer(shield.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		WithGPIO(&shield.SysfsGPIO{Logger: logger.With("component", "gpio")}).
		WithLogger(logger).
		WithDebugLevel(debugLevel).
		WithPowerPin(shield.Pin(config.PowerPin)).
		WithNetwork(shield.NetworkConfig{APN: config.APN, MNO: mno, PDP: pdp})
	if config.PowerDetectPin >= 0 {
		builder = builder.WithPowerDetectPin(shield.Pin(config.PowerDetectPin))
	}
	if config.ResetPin >= 0 {
		builder = builder.WithResetPin(shield.Pin(config.ResetPin))
	}

	shieldConfig, err := builder.Build()
	if err != nil {
		logger.Error("Failed to create shield config", "error", err)
		os.Exit(1)
	}

	s, err := shield.New(context.Background(), shieldConfig)
	if err != nil {
		logger.Error("Failed to open shield transport", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting LTE shield bring-up", "port", config.SerialPort)

	// The bring-up blocks for the whole power/configure/register sequence;
	// run it off the main goroutine so the status server is live meanwhile.
	go func() {
		if s.Begin() {
			logger.Info("Shield bring-up complete", "registration", s.Registration().String())
		} else {
			logger.Error("Shield bring-up failed", "error", s.LastError())
		}
	}()

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Shield: s,
		},
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Starting status server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Status server failed", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	logger.Info("Closing shield transport")
	if err := s.Close(); err != nil {
		logger.Error("Failed to close shield", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing status server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
