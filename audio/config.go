package audio

import (
	"fmt"
	"time"
)

// Transcribe policies.
const (
	// PolicyPerChunk queues a transcription after every received chunk.
	PolicyPerChunk = "per_chunk"
	// PolicyOnEnd transcribes once, when the meeting ends.
	PolicyOnEnd = "on_end"
)

// Config holds audio pipeline settings.
type Config struct {
	RecordingsDir string `mapstructure:"recordings_dir"`
	TempDir       string `mapstructure:"temp_dir"`
	// MaxSizeBytes caps a meeting's container file.
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	// FFmpegPath is the transcoder binary.
	FFmpegPath              string        `mapstructure:"ffmpeg_path"`
	MaxConcurrentTranscodes int           `mapstructure:"max_concurrent_transcodes"`
	TranscodeTimeout        time.Duration `mapstructure:"transcode_timeout"`
	TranscribePolicy        string        `mapstructure:"transcribe_policy"`
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.RecordingsDir == "" {
		c.RecordingsDir = "recordings"
	}
	if c.TempDir == "" {
		c.TempDir = "temp"
	}
	if c.MaxSizeBytes <= 0 {
		c.MaxSizeBytes = 50 << 20
	}
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.MaxConcurrentTranscodes <= 0 {
		c.MaxConcurrentTranscodes = 2
	}
	if c.TranscodeTimeout <= 0 {
		c.TranscodeTimeout = 5 * time.Minute
	}
	if c.TranscribePolicy == "" {
		c.TranscribePolicy = PolicyPerChunk
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.TranscribePolicy {
	case PolicyPerChunk, PolicyOnEnd:
	default:
		return fmt.Errorf("audio: unknown transcribe_policy %q", c.TranscribePolicy)
	}
	if c.MaxSizeBytes <= 0 {
		return fmt.Errorf("audio: max_size_bytes must be positive")
	}
	return nil
}
