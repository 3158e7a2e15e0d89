package main

import (
	"fmt"

	"github.com/kbukum/huddle/api"
	"github.com/kbukum/huddle/audio"
	"github.com/kbukum/huddle/config"
	"github.com/kbukum/huddle/database"
	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/llm/openai"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/redis"
	"github.com/kbukum/huddle/server"
	"github.com/kbukum/huddle/storage"
	"github.com/kbukum/huddle/tasks"
	"github.com/kbukum/huddle/transcription"
	"github.com/kbukum/huddle/transcription/deepgram"
	"github.com/kbukum/huddle/transcription/whisper"
)

const serviceName = "huddle"

// Config is the full service configuration loaded from cmd/huddle/config.yml,
// .env and the environment.
type Config struct {
	config.ServiceConfig `mapstructure:",squash"`

	Server        server.Config              `mapstructure:"server"`
	Database      database.Config            `mapstructure:"database"`
	Redis         redis.Config               `mapstructure:"redis"`
	Storage       storage.Config             `mapstructure:"storage"`
	Tracing       observability.TracerConfig `mapstructure:"tracing"`
	Transcription transcription.Config       `mapstructure:"transcription"`
	Deepgram      deepgram.Config            `mapstructure:"deepgram"`
	Whisper       whisper.Config             `mapstructure:"whisper"`
	LLM           llm.Config                 `mapstructure:"llm"`
	OpenAI        openai.Config              `mapstructure:"openai"`
	Audio         audio.Config               `mapstructure:"audio"`
	Meeting       meeting.Config             `mapstructure:"meeting"`
	Tasks         tasks.Config               `mapstructure:"tasks"`
	API           api.Config                 `mapstructure:"api"`
}

// ApplyDefaults fills every section's zero values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	c.Tracing.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Audio.ApplyDefaults()
	c.Meeting.ApplyDefaults()
	c.Tasks.ApplyDefaults()
	if len(c.API.AllowedOrigins) == 0 {
		c.API.AllowedOrigins = c.Server.CORS.AllowedOrigins
	}
	c.API.ApplyDefaults()
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	sections := []struct {
		name string
		v    interface{ Validate() error }
	}{
		{"server", &c.Server},
		{"database", &c.Database},
		{"redis", &c.Redis},
		{"storage", &c.Storage},
		{"tracing", &c.Tracing},
		{"transcription", &c.Transcription},
		{"llm", &c.LLM},
		{"audio", &c.Audio},
		{"meeting", &c.Meeting},
		{"tasks", &c.Tasks},
		{"api", &c.API},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
