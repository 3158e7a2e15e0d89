package bootstrap

import (
	"github.com/kbukum/huddle/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.ServiceConfig satisfies it once it adds ApplyDefaults and
// Validate covering its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
