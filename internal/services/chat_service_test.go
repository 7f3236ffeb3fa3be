package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/catalog"
	"agenthub/internal/engine"
	"agenthub/internal/models"
)

// fakeSessionStore is an in-memory SessionStore tracking Touch calls.
type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	touches  int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.Session)}
}

func (s *fakeSessionStore) Insert(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ThreadID] = *session
	return nil
}

func (s *fakeSessionStore) GetByID(_ context.Context, threadID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[threadID]
	if !ok {
		return nil, apperr.NotFound("session")
	}
	return &session, nil
}

func (s *fakeSessionStore) ListByAgent(_ context.Context, agentID string) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, session := range s.sessions {
		if session.AgentID == agentID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *fakeSessionStore) Touch(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[threadID]
	if !ok {
		return apperr.NotFound("session")
	}
	session.UpdatedAt = time.Now().UTC()
	s.sessions[threadID] = session
	s.touches++
	return nil
}

func (s *fakeSessionStore) UpdateTitle(_ context.Context, threadID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[threadID]
	if !ok {
		return apperr.NotFound("session")
	}
	session.Title = title
	s.sessions[threadID] = session
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, threadID)
	return nil
}

func (s *fakeSessionStore) touchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touches
}

// fakeCheckpointStore keeps transcripts in memory.
type fakeCheckpointStore struct {
	mu    sync.Mutex
	turns map[string][]models.Turn
}

func newFakeCheckpointStore() *fakeCheckpointStore {
	return &fakeCheckpointStore{turns: make(map[string][]models.Turn)}
}

func (s *fakeCheckpointStore) AppendTurn(_ context.Context, threadID string, turns ...models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[threadID] = append(s.turns[threadID], turns...)
	return nil
}

func (s *fakeCheckpointStore) LoadTranscript(_ context.Context, threadID string) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.turns[threadID]))
	copy(out, s.turns[threadID])
	return out, nil
}

func (s *fakeCheckpointStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, threadID)
	return nil
}

// echoEngine replies with a fixed string and records turns like the real one.
type echoEngine struct {
	reply string
	store *fakeCheckpointStore
}

func (e *echoEngine) Invoke(ctx context.Context, threadID, message string, _ *models.AgentConfig) (string, error) {
	now := time.Now().UTC()
	turns := []models.Turn{{Role: models.RoleUser, Content: message, Timestamp: now}}
	if e.reply != "" {
		turns = append(turns, models.Turn{Role: models.RoleAI, Content: e.reply, Timestamp: now})
	}
	if err := e.store.AppendTurn(ctx, threadID, turns...); err != nil {
		return "", err
	}
	return e.reply, nil
}

// countingFactory counts Build calls and hands out echo engines.
type countingFactory struct {
	builds int64
	reply  string
	store  *fakeCheckpointStore
	delay  time.Duration
}

func (f *countingFactory) Build(_ *models.AgentConfig) (engine.Engine, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	atomic.AddInt64(&f.builds, 1)
	return &echoEngine{reply: f.reply, store: f.store}, nil
}

func newChatFixture(t *testing.T, reply string) (*ChatService, *fakeSessionStore, *fakeAgentStore, *fakeCheckpointStore, *countingFactory) {
	t.Helper()
	sessions := newFakeSessionStore()
	agents := newFakeAgentStore()
	checkpoints := newFakeCheckpointStore()
	factory := &countingFactory{reply: reply, store: checkpoints}
	svc := NewChatService(sessions, agents, checkpoints, factory, time.Hour, time.Hour)
	return svc, sessions, agents, checkpoints, factory
}

func seedAgent(t *testing.T, agents *fakeAgentStore) *models.Agent {
	t.Helper()
	agent := &models.Agent{
		ID:      models.NewAgentID(),
		OwnerID: "owner-1",
		Name:    "helper",
		Config: models.AgentConfig{
			ModelProvider: catalog.ProviderAzureOpenAI,
			Model:         "gpt-5-mini",
			Temperature:   floatPtr(0.7),
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := agents.Insert(context.Background(), agent); err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	return agent
}

func TestCreateSessionDefaults(t *testing.T) {
	svc, _, agents, _, _ := newChatFixture(t, "hi")
	agent := seedAgent(t, agents)

	session, err := svc.CreateSession(context.Background(), agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.ThreadID == "" {
		t.Error("expected a generated thread ID")
	}
	if session.Title != models.DefaultSessionTitle {
		t.Errorf("expected title %q, got %q", models.DefaultSessionTitle, session.Title)
	}

	// A fresh session has an empty transcript
	turns, err := svc.GetHistory(context.Background(), session.ThreadID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected empty history, got %d turns", len(turns))
	}
}

func TestCreateSessionDoesNotCheckAgent(t *testing.T) {
	svc, _, _, _, _ := newChatFixture(t, "hi")

	// Creating a session for an unknown agent succeeds; the check is
	// deferred to the first message turn
	session, err := svc.CreateSession(context.Background(), "ghost-agent")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if session.AgentID != "ghost-agent" {
		t.Errorf("unexpected agent id %s", session.AgentID)
	}
}

func TestSendMessageRecordsTurns(t *testing.T) {
	svc, sessions, agents, _, _ := newChatFixture(t, "first answer")
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	reply, err := svc.SendMessage(ctx, session.ThreadID, "hello there")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply == nil || *reply != "first answer" {
		t.Fatalf("expected reply 'first answer', got %v", reply)
	}

	if _, err := svc.SendMessage(ctx, session.ThreadID, "second question"); err != nil {
		t.Fatalf("second SendMessage failed: %v", err)
	}

	turns, err := svc.GetHistory(ctx, session.ThreadID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	want := []struct{ role, content string }{
		{models.RoleUser, "hello there"},
		{models.RoleAI, "first answer"},
		{models.RoleUser, "second question"},
		{models.RoleAI, "first answer"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %d", len(want), len(turns))
	}
	for i, w := range want {
		if turns[i].Role != w.role || turns[i].Content != w.content {
			t.Errorf("turn %d: got (%s, %q), want (%s, %q)", i, turns[i].Role, turns[i].Content, w.role, w.content)
		}
	}

	if sessions.touchCount() != 2 {
		t.Errorf("expected 2 touches, got %d", sessions.touchCount())
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc, _, _, _, _ := newChatFixture(t, "hi")

	_, err := svc.SendMessage(context.Background(), "no-such-session", "hello")
	if !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestSendMessageDeletedAgent(t *testing.T) {
	svc, sessions, agents, _, _ := newChatFixture(t, "hi")
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := agents.Delete(ctx, agent.ID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}

	_, err = svc.SendMessage(ctx, session.ThreadID, "hello")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected NotFoundError for orphaned session, got %v", err)
	}
	// A failed turn must not bump the session's activity timestamp
	if sessions.touchCount() != 0 {
		t.Errorf("expected no touches on a failed turn, got %d", sessions.touchCount())
	}
}

func TestSendMessageEmptyReply(t *testing.T) {
	svc, _, agents, _, _ := newChatFixture(t, "")
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	reply, err := svc.SendMessage(ctx, session.ThreadID, "hello")
	if err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if reply != nil {
		t.Errorf("expected nil reply for an empty assistant message, got %q", *reply)
	}

	// The user turn is still in the transcript
	turns, err := svc.GetHistory(ctx, session.ThreadID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(turns) != 1 || turns[0].Role != models.RoleUser {
		t.Errorf("expected exactly the user turn, got %v", turns)
	}
}

func TestEngineBuiltOncePerSession(t *testing.T) {
	svc, _, agents, _, factory := newChatFixture(t, "ok")
	factory.delay = 10 * time.Millisecond
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.SendMessage(ctx, session.ThreadID, "ping"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent SendMessage failed: %v", err)
	}

	if builds := atomic.LoadInt64(&factory.builds); builds != 1 {
		t.Errorf("expected exactly 1 engine build, got %d", builds)
	}
}

func TestDeleteSessionRemovesTranscript(t *testing.T) {
	svc, _, agents, checkpoints, _ := newChatFixture(t, "ok")
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, session.ThreadID, "hello"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}

	if err := svc.DeleteSession(ctx, session.ThreadID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if _, err := svc.SendMessage(ctx, session.ThreadID, "hello again"); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	turns, err := checkpoints.LoadTranscript(ctx, session.ThreadID)
	if err != nil {
		t.Fatalf("LoadTranscript failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected transcript gone after delete, got %d turns", len(turns))
	}

	// Deleting again is not an error
	if err := svc.DeleteSession(ctx, session.ThreadID); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestRenameSession(t *testing.T) {
	svc, _, agents, _, _ := newChatFixture(t, "ok")
	agent := seedAgent(t, agents)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, agent.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	renamed, err := svc.RenameSession(ctx, session.ThreadID, "Budget planning")
	if err != nil {
		t.Fatalf("RenameSession failed: %v", err)
	}
	if renamed.Title != "Budget planning" {
		t.Errorf("expected renamed title, got %q", renamed.Title)
	}

	if _, err := svc.RenameSession(ctx, "no-such-session", "x"); !apperr.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}
