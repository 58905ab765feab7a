// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Config holds all application configuration values.
type Config struct {
	// Buses
	I2CBus string // "" selects the first registered bus

	// ADC (joystick axes)
	ADCI2CAddr    uint16
	ADCChannelX   int
	ADCChannelY   int
	ADCFullScale  physic.ElectricPotential // voltage that reads as 4095
	ADCSampleRate physic.Frequency

	// Buttons (active low, pull-up)
	ButtonAPin        string
	ButtonJoystickPin string
	ButtonResetPin    string

	// LEDs
	LEDRedPin    string
	LEDBluePin   string
	LEDGreenPin  string
	PWMFrequency physic.Frequency

	// Diagnostics
	ReportInterval int // ticks between joystick reports, 0 disables them
	DiagSerialPort string
	DiagBaudRate   int

	// Reset
	ResetCommand string

	// MQTT
	MQTTBroker             string
	MQTTClientIDController string
	MQTTClientIDConsole    string
	MQTTClientIDWeb        string
	TopicStatus            string

	// Web Server
	WebServerPort int
}

// Package-level singleton state:
//   - globalConfig: only reachable through InitGlobal/Get.
//   - configOnce: InitGlobal loads at most once.
//   - configMu: write lock while loading, read lock for Get.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration of the reference board wiring.
func Default() *Config {
	return &Config{
		ADCI2CAddr:             0x48,
		ADCChannelX:            0,
		ADCChannelY:            1,
		ADCFullScale:           3300 * physic.MilliVolt,
		ADCSampleRate:          1600 * physic.Hertz,
		ButtonAPin:             "GPIO5",
		ButtonJoystickPin:      "GPIO22",
		ButtonResetPin:         "GPIO6",
		LEDRedPin:              "GPIO13",
		LEDBluePin:             "GPIO12",
		LEDGreenPin:            "GPIO11",
		PWMFrequency:           1 * physic.KiloHertz,
		ReportInterval:         25,
		DiagBaudRate:           115200,
		MQTTClientIDController: "joypad-controller",
		MQTTClientIDConsole:    "joypad-console",
		MQTTClientIDWeb:        "joypad-web",
		TopicStatus:            "joypad/status",
		WebServerPort:          8080,
	}
}

// ReportPeriod is the wall-clock time between joystick reports for a tick
// period of tick.
func (c *Config) ReportPeriod(tick time.Duration) time.Duration {
	return time.Duration(c.ReportInterval) * tick
}

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Parse reads KEY=VALUE lines on top of Default. Blank lines and lines
// starting with # are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		if err := cfg.setValue(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	case "I2C_BUS":
		c.I2CBus = value

	// ADC
	case "ADC_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid ADC_I2C_ADDR %q: %w", value, err)
		}
		c.ADCI2CAddr = uint16(addr)
	case "ADC_CHANNEL_X", "ADC_CHANNEL_Y":
		ch, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
		if ch < 0 || ch > 3 {
			return fmt.Errorf("%s must be 0-3, got %d", key, ch)
		}
		if key == "ADC_CHANNEL_X" {
			c.ADCChannelX = ch
		} else {
			c.ADCChannelY = ch
		}
	case "ADC_FULL_SCALE":
		var v physic.ElectricPotential
		if err := v.Set(value); err != nil {
			return fmt.Errorf("invalid ADC_FULL_SCALE %q: %w", value, err)
		}
		c.ADCFullScale = v
	case "ADC_SAMPLE_RATE":
		var f physic.Frequency
		if err := f.Set(value); err != nil {
			return fmt.Errorf("invalid ADC_SAMPLE_RATE %q: %w", value, err)
		}
		c.ADCSampleRate = f

	// Buttons
	case "BUTTON_A_PIN":
		c.ButtonAPin = value
	case "BUTTON_JOYSTICK_PIN":
		c.ButtonJoystickPin = value
	case "BUTTON_RESET_PIN":
		c.ButtonResetPin = value

	// LEDs
	case "LED_RED_PIN":
		c.LEDRedPin = value
	case "LED_BLUE_PIN":
		c.LEDBluePin = value
	case "LED_GREEN_PIN":
		c.LEDGreenPin = value
	case "PWM_FREQUENCY":
		var f physic.Frequency
		if err := f.Set(value); err != nil {
			return fmt.Errorf("invalid PWM_FREQUENCY %q: %w", value, err)
		}
		c.PWMFrequency = f

	// Diagnostics
	case "REPORT_INTERVAL":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REPORT_INTERVAL %q: %w", value, err)
		}
		if n < 0 {
			return fmt.Errorf("REPORT_INTERVAL must not be negative, got %d", n)
		}
		c.ReportInterval = n
	case "DIAG_SERIAL_PORT":
		c.DiagSerialPort = value
	case "DIAG_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DIAG_BAUD_RATE %q: %w", value, err)
		}
		c.DiagBaudRate = rate

	case "RESET_COMMAND":
		c.ResetCommand = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_CONTROLLER":
		c.MQTTClientIDController = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_STATUS":
		c.TopicStatus = strings.TrimSuffix(value, "/")

	// Web Server
	case "WEB_SERVER_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.ButtonAPin == "" || c.ButtonJoystickPin == "" || c.ButtonResetPin == "" {
		return fmt.Errorf("BUTTON_A_PIN, BUTTON_JOYSTICK_PIN and BUTTON_RESET_PIN are required")
	}
	if c.LEDRedPin == "" || c.LEDBluePin == "" || c.LEDGreenPin == "" {
		return fmt.Errorf("LED_RED_PIN, LED_BLUE_PIN and LED_GREEN_PIN are required")
	}
	if c.ADCChannelX == c.ADCChannelY {
		return fmt.Errorf("ADC_CHANNEL_X and ADC_CHANNEL_Y must differ, both are %d", c.ADCChannelX)
	}
	if c.ADCFullScale <= 0 {
		return fmt.Errorf("ADC_FULL_SCALE must be positive")
	}
	if c.PWMFrequency <= 0 {
		return fmt.Errorf("PWM_FREQUENCY must be positive")
	}
	if c.DiagSerialPort != "" && c.DiagBaudRate <= 0 {
		return fmt.Errorf("DIAG_BAUD_RATE is required when DIAG_SERIAL_PORT is set")
	}
	if c.MQTTBroker != "" && c.TopicStatus == "" {
		return fmt.Errorf("TOPIC_STATUS is required when MQTT_BROKER is set")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Only the first
// call loads; later calls return nil.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance, or nil before InitGlobal.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
