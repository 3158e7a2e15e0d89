package tasks

import (
	"fmt"
	"time"
)

// Config sizes the worker pool.
type Config struct {
	// Workers is the number of concurrent task runners.
	Workers int `mapstructure:"workers"`
	// QueueSize is the number of pending tasks accepted before Submit rejects.
	QueueSize int `mapstructure:"queue_size"`
	// TaskTimeout bounds each task's context. Zero means no per-task deadline.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	// Retain is how many finished tasks stay addressable through Get.
	Retain int `mapstructure:"retain"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.Retain <= 0 {
		c.Retain = 1024
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 || c.QueueSize <= 0 {
		return fmt.Errorf("tasks: workers and queue_size must be positive")
	}
	if c.TaskTimeout < 0 {
		return fmt.Errorf("tasks: task_timeout must be non-negative")
	}
	return nil
}
