package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/observability"
	"github.com/kbukum/huddle/tasks"
	"github.com/kbukum/huddle/validation"
)

// Accumulator appends audio chunks to one container file per meeting.
// Writes for a meeting are serialized, so chunks land in call order.
type Accumulator struct {
	dir     string
	maxSize int64
	locks   *tasks.KeyedMutex
	log     *logger.Logger
}

// NewAccumulator stores containers under cfg.RecordingsDir.
func NewAccumulator(cfg Config, log *logger.Logger) *Accumulator {
	cfg.ApplyDefaults()
	return &Accumulator{
		dir:     cfg.RecordingsDir,
		maxSize: cfg.MaxSizeBytes,
		locks:   tasks.NewKeyedMutex(),
		log:     log.WithComponent("audio.accumulator"),
	}
}

// Path returns the container path of a meeting.
func (a *Accumulator) Path(meetingID string) string {
	return filepath.Join(a.dir, meetingID+"_all.webm")
}

// Append adds data to the meeting's container, creating it on first use.
// A chunk that would grow the file past the size limit is rejected whole.
func (a *Accumulator) Append(ctx context.Context, meetingID string, data []byte) (string, error) {
	if err := checkMeetingID(meetingID); err != nil {
		return "", err
	}
	ctx, span := observability.StartSpan(ctx, observability.SpanAppendChunk)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrMeetingID, meetingID)
	observability.SetSpanAttribute(ctx, observability.AttrBytes, len(data))

	unlock := a.locks.Lock(meetingID)
	defer unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("create recordings dir: %w", err)
	}
	path := a.Path(meetingID)

	size, err := fileSize(path)
	if err != nil {
		return "", err
	}
	if size+int64(len(data)) > a.maxSize {
		return "", apperrors.InvalidInput("audio", "recording exceeds maximum size").
			WithDetail("max_size_bytes", a.maxSize)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open container: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		observability.SetSpanError(ctx, err)
		return "", fmt.Errorf("append chunk: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close container: %w", err)
	}
	return path, nil
}

// Replace overwrites the meeting's container with r and returns the number
// of bytes written.
func (a *Accumulator) Replace(ctx context.Context, meetingID string, r io.Reader) (int64, error) {
	if err := checkMeetingID(meetingID); err != nil {
		return 0, err
	}
	unlock := a.locks.Lock(meetingID)
	defer unlock()

	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create recordings dir: %w", err)
	}
	tmp, err := os.CreateTemp(a.dir, meetingID+"-*.upload")
	if err != nil {
		return 0, fmt.Errorf("create upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(readerWithContext(ctx, r), a.maxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write upload: %w", err)
	}
	if n > a.maxSize {
		return 0, apperrors.InvalidInput("audio_file", "recording exceeds maximum size").
			WithDetail("max_size_bytes", a.maxSize)
	}
	if err := os.Rename(tmp.Name(), a.Path(meetingID)); err != nil {
		return 0, fmt.Errorf("replace container: %w", err)
	}
	a.log.Debug("Container replaced", logger.MeetingFields(meetingID, "bytes", n))
	return n, nil
}

// Claim moves the meeting's container aside under a run-specific name and
// returns its path. Chunks appended afterwards start a new container. It
// returns NOT_FOUND when the meeting has no container.
func (a *Accumulator) Claim(meetingID string) (string, error) {
	if err := checkMeetingID(meetingID); err != nil {
		return "", err
	}
	unlock := a.locks.Lock(meetingID)
	defer unlock()

	claimed := filepath.Join(a.dir, meetingID+"_"+uuid.NewString()+".webm")
	if err := os.Rename(a.Path(meetingID), claimed); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperrors.NotFound("recording", meetingID)
		}
		return "", fmt.Errorf("claim container: %w", err)
	}
	return claimed, nil
}

// Release returns a claimed container to the meeting, ahead of any chunks
// appended since it was claimed.
func (a *Accumulator) Release(meetingID, claimed string) error {
	unlock := a.locks.Lock(meetingID)
	defer unlock()

	path := a.Path(meetingID)
	newer, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.Rename(claimed, path); err != nil {
			return fmt.Errorf("release container: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("open container: %w", err)
	}
	defer newer.Close()

	f, err := os.OpenFile(claimed, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open claimed container: %w", err)
	}
	if _, err := io.Copy(f, newer); err != nil {
		_ = f.Close()
		return fmt.Errorf("merge container: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close claimed container: %w", err)
	}
	if err := os.Rename(claimed, path); err != nil {
		return fmt.Errorf("release container: %w", err)
	}
	return nil
}

// Size returns the container size, or 0 when there is none.
func (a *Accumulator) Size(meetingID string) (int64, error) {
	return fileSize(a.Path(meetingID))
}

// Exists reports whether the meeting has a container.
func (a *Accumulator) Exists(meetingID string) bool {
	_, err := os.Stat(a.Path(meetingID))
	return err == nil
}

func checkMeetingID(id string) error {
	return validation.Var("meeting_id", id, "required,roomcode")
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	return info.Size(), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
