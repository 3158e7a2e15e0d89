package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/process"
)

// Transcoder converts a meeting's container into 16 kHz mono 16-bit PCM WAV.
type Transcoder struct {
	runner  *process.Runner
	ffmpeg  string
	tempDir string
	log     *logger.Logger
}

// NewTranscoder creates a Transcoder bounded to cfg.MaxConcurrentTranscodes
// concurrent ffmpeg runs.
func NewTranscoder(cfg Config, log *logger.Logger) *Transcoder {
	cfg.ApplyDefaults()
	return &Transcoder{
		runner: process.NewRunner(process.RunnerConfig{
			Name:          "ffmpeg",
			MaxConcurrent: cfg.MaxConcurrentTranscodes,
			Timeout:       cfg.TranscodeTimeout,
		}, log),
		ffmpeg:  cfg.FFmpegPath,
		tempDir: cfg.TempDir,
		log:     log.WithComponent("audio.transcoder"),
	}
}

// OutputPath returns where the WAV of container in is written.
func (t *Transcoder) OutputPath(in string) string {
	base := filepath.Base(in)
	return filepath.Join(t.tempDir, strings.TrimSuffix(base, filepath.Ext(base))+".wav")
}

// Transcode runs ffmpeg over a container of the meeting and returns the WAV
// path. Re-running overwrites the previous output.
func (t *Transcoder) Transcode(ctx context.Context, meetingID, in string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscode)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrMeetingID, meetingID)

	if _, err := os.Stat(in); err != nil {
		return "", apperrors.NotFound("recording", meetingID)
	}
	if err := os.MkdirAll(t.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	out := t.OutputPath(in)

	start := time.Now()
	_, err := t.runner.Run(ctx, process.Command{
		Binary: t.ffmpeg,
		Args:   []string{"-y", "-i", in, "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", out},
		// ffmpeg prints its failure last.
		StderrLimit: 2048,
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		if appErr, ok := apperrors.AsAppError(err); ok {
			return "", appErr
		}
		var stderr string
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			stderr = exitErr.Stderr
		}
		t.log.Warn("Transcode failed", logger.MeetingFields(meetingID,
			logger.FieldError, err.Error(),
			"stderr", stderr,
		))
		return "", apperrors.ConversionFailed(stderr, err)
	}
	t.log.Debug("Transcoded", logger.MeetingFields(meetingID,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return out, nil
}

// InUse returns the number of running transcodes.
func (t *Transcoder) InUse() int { return t.runner.InUse() }
