// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/joypad/internal/config"
	"github.com/relabs-tech/joypad/internal/diag"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Status is the latest event of each kind, as served on /api/status.
type Status struct {
	Button   *diag.Event `json:"button,omitempty"`
	PWM      *diag.Event `json:"pwm,omitempty"`
	Joystick *diag.Event `json:"joystick,omitempty"`
	System   *diag.Event `json:"system,omitempty"`
}

// statusHub keeps the latest status and pushes every event to the
// connected websocket clients.
type statusHub struct {
	mu      sync.RWMutex
	latest  map[diag.Kind]diag.Event
	clients map[*websocket.Conn]*sync.Mutex
}

func newStatusHub() *statusHub {
	return &statusHub{
		latest:  make(map[diag.Kind]diag.Event),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

func (h *statusHub) snapshot() (Status, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var s Status
	pick := func(k diag.Kind) *diag.Event {
		if e, ok := h.latest[k]; ok {
			return &e
		}
		return nil
	}
	s.Button = pick(diag.KindButton)
	s.PWM = pick(diag.KindPWM)
	s.Joystick = pick(diag.KindJoystick)
	s.System = pick(diag.KindSystem)
	return s, len(h.latest) > 0
}

// publish records e and sends it to every client. Clients that fail a write
// are dropped.
func (h *statusHub) publish(e diag.Event) {
	h.mu.Lock()
	h.latest[e.Kind] = e
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for c, m := range h.clients {
		conns[c] = m
	}
	h.mu.Unlock()

	for c, m := range conns {
		m.Lock()
		err := c.WriteJSON(e)
		m.Unlock()
		if err != nil {
			log.Printf("web: websocket write error: %v", err)
			h.remove(c)
		}
	}
}

func (h *statusHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.Close()
	}
}

func (h *statusHub) handleStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.snapshot()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

// handleWS sends the current status, then streams every later event until
// the client goes away.
func (h *statusHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	m := &sync.Mutex{}
	h.mu.Lock()
	h.clients[conn] = m
	m.Lock()
	h.mu.Unlock()
	s, _ := h.snapshot()
	err = conn.WriteJSON(s)
	m.Unlock()
	if err != nil {
		h.remove(conn)
		return
	}

	// Reads only detect the close; clients send nothing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("web: websocket error: %v", err)
			}
			h.remove(conn)
			return
		}
	}
}

func (h *statusHub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", h.handleStatus)
	mux.HandleFunc("/ws", h.handleWS)
	return mux
}

// RunWeb subscribes to the controller status topics and serves them over
// HTTP and websocket.
func RunWeb() error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("configuration not initialized")
	}
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is required")
	}

	hub := newStatusHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	topic := cfg.TopicStatus + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var e diag.Event
		if err := json.Unmarshal(msg.Payload(), &e); err != nil {
			log.Printf("web: %s unmarshal error: %v", msg.Topic(), err)
			return
		}
		hub.publish(e)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", topic)

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, hub.routes())
}
