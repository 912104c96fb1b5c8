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

	"go.bug.st/serial"

	"i4.energy/across/atmodem/modem"
	"i4.energy/across/atmodem/transport"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the modem")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("sim-pin", "", "SIM card PIN code (if required)")
	flag.String("mqtt-broker", "", "MQTT broker URL for the SMS-send intake path (disabled if empty)")
	flag.String("mqtt-topic", "sms/send", "MQTT topic to subscribe to for send requests")
	configFile := flag.String("config", "", "Path to a YAML config file (optional)")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithYAMLFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	modemConfig := modem.Config{
		ATTimeout:       5 * time.Second,
		InitTimeout:     30 * time.Second,
		MaxRetries:      5,
		MinSendInterval: 10 * time.Second,
		SimPIN:          config.SimPIN,
		Dialer: transport.SerialDialer{
			PortName: config.SerialPort,
			Mode:     &serial.Mode{BaudRate: config.BaudRate},
		},
	}

	m, err := modem.New(context.Background(), modemConfig)
	if err != nil {
		logger.Error("Failed to create modem", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting SMS Gateway")

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Modem:  m,
		},
	}

	var mqttIntake *MQTTIntake
	if config.MQTTBroker != "" {
		mqttIntake, err = NewMQTTIntake(config.MQTTBroker, config.MQTTTopic, m, logger.With("component", "mqtt"))
		if err != nil {
			logger.Error("Failed to start MQTT intake", "error", err)
			os.Exit(1)
		}
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	if mqttIntake != nil {
		mqttIntake.Close()
	}

	logger.Info("Closing modem connection")
	if err := m.Close(); err != nil {
		logger.Error("Failed to close modem", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
