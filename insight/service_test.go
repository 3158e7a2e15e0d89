package insight

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/huddle/database"
	apperrors "github.com/kbukum/huddle/errors"
	"github.com/kbukum/huddle/llm"
	"github.com/kbukum/huddle/logger"
	"github.com/kbukum/huddle/meeting"
	"github.com/kbukum/huddle/redis"
	"github.com/kbukum/huddle/session"
	"github.com/kbukum/huddle/tasks"
)

const room = "ROOM01"

type fakeLLM struct {
	mu       sync.Mutex
	content  string
	err      error
	gate     chan struct{}
	requests []llm.CompletionRequest
}

func (f *fakeLLM) Name() string                       { return "fake" }
func (f *fakeLLM) IsAvailable(_ context.Context) bool { return true }

func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content, Model: "fake-model"}, nil
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	msgs := f.requests[len(f.requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type summarySub struct {
	mu  sync.Mutex
	got []SummaryEvent
}

func (s *summarySub) ID() string { return "sub" }

func (s *summarySub) Send(p []byte) error {
	var ev SummaryEvent
	if err := json.Unmarshal(p, &ev); err != nil {
		return err
	}
	s.mu.Lock()
	s.got = append(s.got, ev)
	s.mu.Unlock()
	return nil
}

type flushRecorder struct {
	mu  sync.Mutex
	ids []string
	// store, when set, runs on flush and counts as a new segment.
	store func(id string)
}

func (f *flushRecorder) Flush(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	f.ids = append(f.ids, id)
	store := f.store
	f.mu.Unlock()
	if store == nil {
		return false, nil
	}
	store(id)
	return true, nil
}

func (f *flushRecorder) flushed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

type fixture struct {
	svc   *Service
	repo  *meeting.Repository
	llm   *fakeLLM
	queue *tasks.Queue
	sub   *summarySub
	cache *redis.TypedStore[meeting.Insight]
	mr    *miniredis.Miniredis
	flush *flushRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Nop()
	ctx := context.Background()

	db, err := database.Open(ctx, database.Config{DSN: "file::memory:", LogLevel: "silent"}, log)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(meeting.Models()...))
	t.Cleanup(func() { _ = db.Close() })
	repo := meeting.NewRepository(db)

	mr := miniredis.RunT(t)
	client, err := redis.New(redis.Config{Enabled: true, Addr: mr.Addr()}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	cache := redis.NewTypedStore[meeting.Insight](client, "insight")

	queue := tasks.NewQueue(tasks.Config{Workers: 2}, log)
	require.NoError(t, queue.Start(ctx))
	t.Cleanup(func() { _ = queue.Stop(context.Background()) })

	sessions := session.NewRegistry(log)
	sub := &summarySub{}
	sessions.Subscribe(session.KindSummary, room, sub)

	fake := &fakeLLM{content: "Talked about Q3\n---\nBob drafts plan\n---\nShip in May"}
	flush := &flushRecorder{}
	svc := NewService(repo, NewExtractor(fake, log, nil), queue, log,
		WithCache(cache, time.Hour),
		WithSessions(sessions),
		WithFlusher(flush),
	)

	require.NoError(t, repo.CreateMeeting(ctx, &meeting.Meeting{
		ID: room, Title: "Planning", OwnerID: "alice", Participants: []string{"alice"}, Status: meeting.StatusActive,
	}))
	return &fixture{svc: svc, repo: repo, llm: fake, queue: queue, sub: sub, cache: cache, mr: mr, flush: flush}
}

func (f *fixture) addSegment(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.repo.AddSegment(context.Background(), &meeting.Segment{MeetingID: room, Content: text}))
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestExtractSendsPrompt(t *testing.T) {
	fake := &fakeLLM{content: "a\n---\nb\n---\nc"}
	got := NewExtractor(fake, logger.Nop(), nil).Extract(context.Background(), "hello there")

	assert.Equal(t, Insights{Summary: "a", ActionItems: "b", Decisions: "c"}, got)
	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	assert.Equal(t, SystemPrompt, req.SystemPrompt)
	assert.Equal(t, []llm.Message{{Role: llm.RoleUser, Content: "Please analyze this meeting transcript:\n\nhello there"}}, req.Messages)
}

func TestExtractProviderFailure(t *testing.T) {
	fake := &fakeLLM{err: errors.New("rate limited")}
	got := NewExtractor(fake, logger.Nop(), nil).Extract(context.Background(), "hello")

	assert.Equal(t, Insights{
		Summary:     "Unable to generate summary due to technical issues.",
		ActionItems: "None identified.",
		Decisions:   "None identified.",
		Degraded:    true,
	}, got)
}

func TestRunStoresCachesAndPushes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addSegment(t, "first line")
	f.addSegment(t, "second line")

	in, err := f.svc.Run(ctx, room)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Equal(t, "Talked about Q3", in.Summary)
	assert.Equal(t, "Bob drafts plan", in.ActionItems)
	assert.Equal(t, "Ship in May", in.Decisions)

	assert.Equal(t, UserPrompt("first line\nsecond line"), f.llm.requests[0].Messages[0].Content)

	assert.True(t, f.mr.Exists("insight:"+room))

	require.Len(t, f.sub.got, 1)
	assert.Equal(t, SummaryEvent{
		Type: "summary", Summary: in.Summary, ActionItems: in.ActionItems, Decisions: in.Decisions, SummaryAvailable: true,
	}, f.sub.got[0])

	// A second run leaves the stored insight alone.
	again, err := f.svc.Run(ctx, room)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, 1, f.llm.calls())
}

func TestRunWithoutTranscriptDoesNothing(t *testing.T) {
	f := newFixture(t)
	f.addSegment(t, "   ")

	in, err := f.svc.Run(context.Background(), room)
	require.NoError(t, err)
	assert.Nil(t, in)
	assert.Zero(t, f.llm.calls())
	assert.Empty(t, f.sub.got)
}

func TestGetUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, room)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	cached := &meeting.Insight{ID: "cached", MeetingID: room, Summary: "from cache"}
	require.NoError(t, f.cache.Save(ctx, room, cached, time.Hour))

	got, err := f.svc.Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, "from cache", got.Summary)
}

func TestGetSurvivesCacheOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repo.CreateInsight(ctx, &meeting.Insight{MeetingID: room, Summary: "db"}))

	f.mr.Close()
	got, err := f.svc.Get(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, "db", got.Summary)
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)
	f.addSegment(t, "we agreed on things")

	existing, task, err := f.svc.Generate(ctx, room)
	require.NoError(t, err)
	assert.Nil(t, existing)
	require.NotNil(t, task)
	require.NoError(t, task.Wait(ctx))

	existing, task, err = f.svc.Generate(ctx, room)
	require.NoError(t, err)
	assert.Nil(t, task)
	require.NotNil(t, existing)
	assert.Equal(t, "Talked about Q3", existing.Summary)
	assert.Empty(t, f.flush.flushed(), "manual generation does not flush audio")

	_, _, err = f.svc.Generate(ctx, "NOPE00")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestFinalizeFlushesThenGenerates(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)
	f.addSegment(t, "closing remarks")

	task := f.svc.Finalize(room)
	require.NoError(t, task.Wait(ctx))

	assert.Equal(t, []string{room}, f.flush.flushed())
	ok, err := f.repo.InsightExists(ctx, room)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFinalizeIsNotMergedIntoPendingGeneration(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)
	f.addSegment(t, "early discussion")
	f.llm.gate = make(chan struct{})
	f.flush.store = func(id string) {
		assert.NoError(t, f.repo.AddSegment(context.Background(), &meeting.Segment{MeetingID: id, Content: "final words"}))
	}

	view, err := f.svc.View(ctx, room)
	require.NoError(t, err)
	require.Equal(t, MessageGenerationStarted, view.Message)

	task := f.svc.Finalize(room)
	assert.NotEqual(t, view.TaskID, task.ID)
	assert.Equal(t, TaskFinalize, task.Name)

	close(f.llm.gate)
	require.NoError(t, f.queue.Drain(ctx))
	require.NoError(t, task.Err())

	assert.Equal(t, []string{room}, f.flush.flushed())
	assert.Contains(t, f.llm.lastPrompt(), "final words")

	in, err := f.repo.GetInsight(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, "Talked about Q3", in.Summary)
}

func TestFinalizeRegeneratesWhenAudioArrivedLate(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)
	f.addSegment(t, "first half")

	in, err := f.svc.Run(ctx, room)
	require.NoError(t, err)
	require.NotNil(t, in)
	assert.Equal(t, 1, f.llm.calls())

	f.flush.store = func(id string) {
		assert.NoError(t, f.repo.AddSegment(context.Background(), &meeting.Segment{MeetingID: id, Content: "second half"}))
	}
	require.NoError(t, f.svc.Finalize(room).Wait(ctx))

	assert.Equal(t, 2, f.llm.calls())
	assert.Contains(t, f.llm.lastPrompt(), "second half")
	ok, err := f.repo.InsightExists(ctx, room)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestConcurrentFinalizeGeneratesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)
	f.addSegment(t, "text")

	for i := 0; i < 5; i++ {
		f.svc.Finalize(room)
	}
	require.NoError(t, f.queue.Drain(ctx))

	assert.LessOrEqual(t, f.llm.calls(), 2)
	ok, err := f.repo.InsightExists(ctx, room)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestView(t *testing.T) {
	f := newFixture(t)
	ctx := waitCtx(t)

	view, err := f.svc.View(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, &View{Message: MessageNoSummary}, view)
	assert.Zero(t, f.llm.calls())

	f.addSegment(t, "something was said")
	view, err = f.svc.View(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, MessageGenerationStarted, view.Message)
	assert.False(t, view.SummaryAvailable)
	assert.NotEmpty(t, view.TaskID)
	require.NoError(t, f.queue.Drain(ctx))

	view, err = f.svc.View(ctx, room)
	require.NoError(t, err)
	assert.True(t, view.SummaryAvailable)
	assert.Equal(t, "Talked about Q3", view.Summary)
	assert.Empty(t, view.Message)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addSegment(t, "text")
	_, err := f.svc.Run(ctx, room)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, room))
	assert.False(t, f.mr.Exists("insight:"+room))
	_, err = f.svc.Get(ctx, room)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))

	err = f.svc.Delete(ctx, room)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}
