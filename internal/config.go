package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/camledger/internal/persist"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Data     DataConfig        `yaml:"data"`
	Schedule ScheduleConfig    `yaml:"schedule"`
	History  HistoryConfig     `yaml:"history"`
	MCP      MCPConfig         `yaml:"mcp"`
	SSE      SSEConfig         `yaml:"sse"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Schedule.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	return c.SSE.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// DataConfig points at the snapshot file. Seed names the cameras created
// when the file does not exist yet.
type DataConfig struct {
	Path string   `yaml:"path"`
	Seed []string `yaml:"seed"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Seed, validation.Each(validation.Required)),
	)
}

// ScheduleConfig lists the local "HH:MM" times of the daily saves.
type ScheduleConfig struct {
	Saves []string `yaml:"saves"`
}

// Validate validates the schedule configuration.
func (c *ScheduleConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Saves, validation.Each(validation.By(clockTime))),
	)
}

func clockTime(value any) error {
	s, ok := value.(string)
	if !ok {
		return errors.New("must be a string")
	}
	_, _, err := persist.ParseClock(s)
	return err
}

// HistoryConfig holds the SQLite lending journal location.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the history configuration.
func (c *HistoryConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MCPConfig toggles the MCP endpoint at /mcp.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}

// SSEConfig holds live-update stream settings.
type SSEConfig struct {
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// Validate validates the SSE configuration.
func (c *SSEConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Heartbeat, validation.Required, validation.Min(time.Second)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Data: DataConfig{
			Path: "./camera_data.json",
			Seed: append([]string(nil), persist.DefaultSeed...),
		},
		Schedule: ScheduleConfig{
			Saves: []string{"20:59", "06:59"},
		},
		History: HistoryConfig{
			Path: "./camledger.db",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		SSE: SSEConfig{
			Heartbeat: 15 * time.Second,
		},
	}
}
