// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package diag

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// publishTimeout bounds how long Report waits for the broker. The control
// loop must not stall on a slow network.
const publishTimeout = 5 * time.Millisecond

// MQTTReporter publishes each event as JSON on <prefix>/<kind>.
type MQTTReporter struct {
	client mqtt.Client
	prefix string
}

// ConnectMQTT connects to broker and returns a reporter publishing under prefix.
func ConnectMQTT(broker, clientID, prefix string) (*MQTTReporter, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("diag: connected to MQTT broker at %s", broker)
	return NewMQTTReporter(client, prefix), nil
}

// NewMQTTReporter wraps an already connected client.
func NewMQTTReporter(client mqtt.Client, prefix string) *MQTTReporter {
	return &MQTTReporter{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

// Topic returns the topic events of kind k are published on.
func (m *MQTTReporter) Topic(k Kind) string {
	return Topic(m.prefix, k)
}

// Topic joins a status prefix and an event kind.
func Topic(prefix string, k Kind) string {
	return strings.TrimSuffix(prefix, "/") + "/" + string(k)
}

func (m *MQTTReporter) Report(e Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("diag: event marshal error: %v", err)
		return
	}
	token := m.client.Publish(m.Topic(e.Kind), 0, e.Retained(), payload)
	if token.WaitTimeout(publishTimeout) && token.Error() != nil {
		log.Printf("diag: MQTT publish error (%s): %v", e.Kind, token.Error())
	}
}

// Close disconnects from the broker.
func (m *MQTTReporter) Close() {
	m.client.Disconnect(250)
}
