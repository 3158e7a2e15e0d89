package meeting

import "fmt"

// Config holds room rules.
type Config struct {
	MaxParticipants int `mapstructure:"max_participants"`
	RoomCodeLength  int `mapstructure:"room_code_length"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxParticipants <= 0 {
		c.MaxParticipants = 4
	}
	if c.RoomCodeLength <= 0 {
		c.RoomCodeLength = 6
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxParticipants < 1 {
		return fmt.Errorf("meeting: max_participants must be at least 1")
	}
	if c.RoomCodeLength < 4 || c.RoomCodeLength > 32 {
		return fmt.Errorf("meeting: room_code_length must be between 4 and 32")
	}
	return nil
}
