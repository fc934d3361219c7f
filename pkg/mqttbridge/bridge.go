// Package mqttbridge republishes bus events to MQTT and accepts
// remote control commands over a command topic.
package mqttbridge

import (
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/serebryakov7/dbcbus/common"
	"github.com/serebryakov7/dbcbus/internal/dbc"
)

// Config configures a Bridge's MQTT connection and topic layout.
type Config struct {
	Broker       string
	ClientID     string
	Topic        string // base topic; events publish under Topic/<bus>/...
	CommandTopic string // topic carrying incoming common.BusCommand messages
}

// Bridge connects one MQTT client to zero or more dbc.Bus instances,
// republishing every Event as JSON and dispatching incoming commands
// to a caller-supplied handler.
type Bridge struct {
	config  Config
	client  mqtt.Client
	handler func(common.BusCommand) error
	logger  *slog.Logger
}

// New builds a Bridge. cmdHandler may be nil if no command topic is
// configured.
func New(config Config, cmdHandler func(common.BusCommand) error, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{config: config, handler: cmdHandler, logger: logger}
}

// Connect dials the broker and, if a command topic is configured,
// subscribes to it.
func (b *Bridge) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(b.config.Broker)
	opts.SetClientID(b.config.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		b.logger.Info("connected to mqtt broker", "broker", b.config.Broker)
		b.subscribeToCommands()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		b.logger.Warn("mqtt connection lost", "err", err)
	})

	b.client = mqtt.NewClient(opts)
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Disconnect closes the MQTT connection if open.
func (b *Bridge) Disconnect() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(250)
	}
}

// Subscribe registers the bridge as a dbc.Handler on bus, publishing
// every event it sees.
func (b *Bridge) Subscribe(bus *dbc.Bus) {
	bus.Subscribe(func(ev dbc.Event) {
		b.publish(ev)
	})
}

func (b *Bridge) publish(ev dbc.Event) {
	if b.client == nil || !b.client.IsConnected() {
		return
	}

	data, err := json.Marshal(ev)
	if err != nil {
		b.logger.Warn("failed to marshal event", "err", err)
		return
	}

	topic := fmt.Sprintf("%s/%s/%d", b.config.Topic, ev.Bus, ev.MessageID)
	if ev.Kind == dbc.SignalUpdated {
		topic = fmt.Sprintf("%s/%s", topic, ev.SignalName)
	}

	token := b.client.Publish(topic, 0, false, data)
	if token.Wait() && token.Error() != nil {
		b.logger.Warn("failed to publish event", "topic", topic, "err", token.Error())
	}
}

func (b *Bridge) subscribeToCommands() {
	if b.config.CommandTopic == "" {
		return
	}
	token := b.client.Subscribe(b.config.CommandTopic, 1, b.handleIncomingCommand)
	go func() {
		<-token.Done()
		if token.Error() != nil {
			b.logger.Warn("failed to subscribe to command topic", "topic", b.config.CommandTopic, "err", token.Error())
		}
	}()
}

func (b *Bridge) handleIncomingCommand(_ mqtt.Client, msg mqtt.Message) {
	var cmd common.BusCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		b.logger.Warn("failed to decode command", "err", err, "payload", string(msg.Payload()))
		return
	}

	if b.handler == nil {
		b.logger.Warn("no command handler configured, dropping command", "type", cmd.Type)
		return
	}
	if err := b.handler(cmd); err != nil {
		b.logger.Warn("command handler failed", "type", cmd.Type, "err", err)
	}
}
