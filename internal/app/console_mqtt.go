// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/diag"
)

// printStatus decodes one status payload and writes its line to w.
func printStatus(w io.Writer, payload []byte) error {
	var e diag.Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\n", e.Time.Format("15:04:05.000"), e.Line())
	return err
}

// RunConsoleMQTT prints every status event the controller publishes.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("configuration not initialized")
	}
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	topic := cfg.TopicStatus + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := printStatus(os.Stdout, msg.Payload()); err != nil {
			log.Printf("console: %s unmarshal error: %v", msg.Topic(), err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", topic)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
