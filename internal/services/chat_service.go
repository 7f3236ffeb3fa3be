package services

import (
	"context"
	"log"
	"time"

	"agenthub/internal/apperr"
	"agenthub/internal/engine"
	"agenthub/internal/logging"
	"agenthub/internal/models"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// SessionStore is the persistence boundary for chat sessions.
type SessionStore interface {
	Insert(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, threadID string) (*models.Session, error)
	ListByAgent(ctx context.Context, agentID string) ([]models.Session, error)
	Touch(ctx context.Context, threadID string) error
	UpdateTitle(ctx context.Context, threadID, title string) error
	Delete(ctx context.Context, threadID string) error
}

// CheckpointStore is the transcript of record plus cleanup, as the chat
// service sees it.
type CheckpointStore interface {
	engine.CheckpointStore
	Delete(ctx context.Context, threadID string) error
}

// ChatService orchestrates session lifecycle and message turns. It owns the
// per-session engine cache: a TTL cache with idle eviction, guarded by
// single-flight construction so at most one engine is ever built per session.
type ChatService struct {
	sessions    SessionStore
	agents      AgentStore
	checkpoints CheckpointStore
	factory     engine.Factory

	engines *cache.Cache
	group   singleflight.Group
}

// NewChatService creates a new chat service. ttl bounds how long an idle
// engine stays cached; cleanup is the eviction sweep interval.
func NewChatService(sessions SessionStore, agents AgentStore, checkpoints CheckpointStore, factory engine.Factory, ttl, cleanup time.Duration) *ChatService {
	engines := cache.New(ttl, cleanup)
	engines.OnEvicted(func(sessionID string, _ interface{}) {
		log.Printf("🗑️  [ENGINE-CACHE] Engine for session %s evicted", sessionID)
		if m := GetMetrics(); m != nil {
			m.RecordEngineEviction()
		}
	})

	return &ChatService{
		sessions:    sessions,
		agents:      agents,
		checkpoints: checkpoints,
		factory:     factory,
		engines:     engines,
	}
}

// CreateSession allocates a session with a fresh thread id and no prior
// turns. The agent id is deliberately not checked for existence here; the
// check is deferred to the first message turn.
func (s *ChatService) CreateSession(ctx context.Context, agentID string) (*models.Session, error) {
	now := time.Now().UTC()
	session := &models.Session{
		ThreadID:  models.NewThreadID(),
		AgentID:   agentID,
		Title:     models.DefaultSessionTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SendMessage runs one message turn: load session, load agent (the deferred
// validation point for orphaned sessions), obtain the session's engine,
// invoke it, touch the session and return the reply. A nil reply means the
// turn produced no assistant-authored message, which is not a failure. A
// failed turn leaves updated_at untouched.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, message string) (*string, error) {
	start := time.Now()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, s.recordTurnError(err)
	}

	agent, err := s.agents.GetByID(ctx, session.AgentID)
	if err != nil {
		return nil, s.recordTurnError(err)
	}

	eng, err := s.engineFor(sessionID, &agent.Config)
	if err != nil {
		return nil, s.recordTurnError(err)
	}

	reply, err := eng.Invoke(ctx, session.ThreadID, message, &agent.Config)
	if err != nil {
		return nil, s.recordTurnError(err)
	}

	if m := GetMetrics(); m != nil {
		m.RecordMessageTurn()
		m.RecordTurnLatency(time.Since(start).Seconds())
	}
	logging.WithSession(sessionID, session.AgentID).Info("message turn completed",
		"duration_ms", time.Since(start).Milliseconds())

	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		// The turn itself succeeded and is in the transcript; a stale
		// updated_at only affects session ordering
		log.Printf("⚠️  [CHAT] Failed to touch session %s: %v", sessionID, err)
	}

	if reply == "" {
		return nil, nil
	}
	return &reply, nil
}

// recordTurnError counts the failure by taxonomy type, then passes it on.
func (s *ChatService) recordTurnError(err error) error {
	m := GetMetrics()
	if m == nil {
		return err
	}
	switch {
	case apperr.IsNotFound(err):
		m.RecordTurnError("not_found")
	case apperr.IsValidation(err):
		m.RecordTurnError("validation")
	case apperr.IsConfiguration(err):
		m.RecordTurnError("configuration")
	case apperr.IsUpstream(err):
		m.RecordTurnError("upstream")
	case apperr.IsPersistence(err):
		m.RecordTurnError("persistence")
	default:
		m.RecordTurnError("internal")
	}
	return err
}

// engineFor returns the session's cached engine, building it at most once
// under concurrent first-use. The engine is built from whatever config the
// agent has at first use; later config edits apply after the cache entry
// expires.
func (s *ChatService) engineFor(sessionID string, cfg *models.AgentConfig) (engine.Engine, error) {
	if cached, ok := s.engines.Get(sessionID); ok {
		return cached.(engine.Engine), nil
	}

	built, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
		// Losers of the cache race land here after the winner stored it
		if cached, ok := s.engines.Get(sessionID); ok {
			return cached, nil
		}

		eng, err := s.factory.Build(cfg)
		if err != nil {
			return nil, err
		}
		s.engines.Set(sessionID, eng, cache.DefaultExpiration)
		log.Printf("⚙️  [ENGINE-CACHE] Built engine for session %s (model %s)", sessionID, cfg.Model)
		if m := GetMetrics(); m != nil {
			m.RecordEngineBuild()
		}
		return eng, nil
	})
	if err != nil {
		return nil, err
	}
	return built.(engine.Engine), nil
}

// GetHistory reads the transcript of record directly from the checkpoint
// store, no cached engine required. An unknown session or empty checkpoint
// yields an empty transcript, never an error.
func (s *ChatService) GetHistory(ctx context.Context, sessionID string) ([]models.Turn, error) {
	return s.checkpoints.LoadTranscript(ctx, sessionID)
}

// ListAgentSessions returns all sessions for an agent, most-recently-updated
// first.
func (s *ChatService) ListAgentSessions(ctx context.Context, agentID string) ([]models.Session, error) {
	return s.sessions.ListByAgent(ctx, agentID)
}

// RenameSession updates a session's display title and returns the stored
// record.
func (s *ChatService) RenameSession(ctx context.Context, sessionID, title string) (*models.Session, error) {
	if err := s.sessions.UpdateTitle(ctx, sessionID, title); err != nil {
		return nil, err
	}
	return s.sessions.GetByID(ctx, sessionID)
}

// DeleteSession removes a session and its transcript, independently of its
// agent. Idempotent.
func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if err := s.checkpoints.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.engines.Delete(sessionID)
	return nil
}
