package main

import (
	"context"
	"encoding/json"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"i4.energy/across/atmodem/modem"
)

// MQTTIntake subscribes to a topic carrying {"to","message"} JSON envelopes
// and forwards each one to Modem.SendSMS, as a second front end alongside
// the HTTP /sms handler. Grounded on the teacher's own sms-gw.go draft
// (startMQTT), re-pointed at modem.Modem/client.Client instead of the
// draft's hand-rolled Modem.send/readLines loop.
type MQTTIntake struct {
	client mqtt.Client
	logger *slog.Logger
}

type smsEnvelope struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// NewMQTTIntake connects to broker and subscribes to topic. The modem is
// used to actually place each send; errors are logged, not surfaced to the
// broker (MQTT has no response channel back to the publisher here).
func NewMQTTIntake(broker, topic string, m *modem.Modem, logger *slog.Logger) (*MQTTIntake, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("atgwd")
	opts.SetAutoReconnect(true)
	opts.SetOrderMatters(false)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("mqtt connection lost", "error", err)
	})

	intake := &MQTTIntake{logger: logger}

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("mqtt connected", "topic", topic)
		token := c.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			intake.handle(m, msg.Payload())
		})
		token.Wait()
		if err := token.Error(); err != nil {
			logger.Error("mqtt subscribe failed", "topic", topic, "error", err)
		}
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}

	intake.client = client
	return intake, nil
}

func (i *MQTTIntake) handle(m *modem.Modem, payload []byte) {
	var req smsEnvelope
	if err := json.Unmarshal(payload, &req); err != nil {
		i.logger.Error("mqtt bad payload", "error", err)
		return
	}
	if req.To == "" || req.Message == "" {
		i.logger.Error("mqtt payload missing to/message")
		return
	}

	result, err := m.SendSMS(context.Background(), req.To, req.Message)
	if err != nil {
		i.logger.Error("mqtt-triggered SMS send failed", "to", req.To, "error", err)
		return
	}
	i.logger.Info("mqtt-triggered SMS sent", "to", req.To, "reference", result.Reference)
}

// Close disconnects the MQTT client.
func (i *MQTTIntake) Close() {
	if i.client != nil {
		i.client.Disconnect(500)
	}
}
