// Package conversation orchestrates one request/response turn against the
// session store, the LLM and the metadata index.
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jchen2215/promptforge/domain"
	"github.com/jchen2215/promptforge/index"
	"github.com/jchen2215/promptforge/protocol"
	"github.com/jchen2215/promptforge/store"
)

// PreviewLength is how much of the latest assistant turn's content the
// metadata index keeps.
const PreviewLength = 140

// LLMClient is the upstream model collaborator.
type LLMClient interface {
	// NextTurn produces the raw text for the next assistant turn given the
	// full history including the just-appended user turn.
	NextTurn(ctx context.Context, history []domain.Turn) (string, error)
	// GenerateTitle derives a short session title from free text. Best
	// effort: callers must tolerate failure.
	GenerateTitle(ctx context.Context, text string) (string, error)
}

// Service is the conversation controller.
type Service struct {
	store store.SessionStore
	llm   LLMClient
	index *index.Index

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a conversation service.
func New(st store.SessionStore, llm LLMClient, idx *index.Index) *Service {
	return &Service{
		store: st,
		llm:   llm,
		index: idx,
		locks: make(map[string]*sync.Mutex),
	}
}

// sessionLock serializes turns on one session; turns on different sessions
// proceed concurrently.
func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// SubmitTurn runs one conversation turn: load history, append the user turn,
// ask the model, validate its reply, append the assistant turn as canonical
// JSON, persist the full sequence, and refresh the metadata index. The
// session is created implicitly when no history exists yet; only that first
// turn triggers title generation, and a failed title call never fails the
// turn.
func (s *Service) SubmitTurn(ctx context.Context, sessionID, userText, userID string) (*protocol.StructuredResponse, error) {
	safe, err := store.SanitizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	lock := s.sessionLock(safe)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.store.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	firstTurn := len(history) == 0

	now := time.Now().UTC()
	history = append(history, domain.Turn{
		ID:        "turn_" + uuid.New().String()[:8],
		SessionID: safe,
		Role:      domain.RoleUser,
		Content:   userText,
		CreatedAt: now,
	})

	raw, err := s.llm.NextTurn(ctx, history)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	resp, err := protocol.Parse(raw)
	if err != nil {
		return nil, err
	}

	content, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: encode response: %v", domain.ErrUpstreamFailure, err)
	}

	history = append(history, domain.Turn{
		ID:        "turn_" + uuid.New().String()[:8],
		SessionID: safe,
		Role:      domain.RoleAssistant,
		Content:   string(content),
		CreatedAt: time.Now().UTC(),
	})

	if err := s.store.SaveHistory(ctx, sessionID, userID, history); err != nil {
		return nil, err
	}

	title := ""
	if firstTurn {
		generated, err := s.llm.GenerateTitle(ctx, userText)
		if err != nil {
			log.Printf("WARN: title generation failed for session %s: %v", safe, err)
		} else {
			title = generated
		}
	}

	if err := s.index.Upsert(safe, title, preview(string(content)), time.Now().UTC()); err != nil {
		log.Printf("WARN: failed to update session index for %s: %v", safe, err)
	}

	return resp, nil
}

// Reset deletes a session's history and index entry, reporting whether a
// session existed.
func (s *Service) Reset(ctx context.Context, sessionID string) (bool, error) {
	safe, err := store.SanitizeSessionID(sessionID)
	if err != nil {
		return false, err
	}

	lock := s.sessionLock(safe)
	lock.Lock()
	defer lock.Unlock()

	deleted, err := s.store.DeleteHistory(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if _, err := s.index.Remove(safe); err != nil {
		log.Printf("WARN: failed to remove index entry for %s: %v", safe, err)
	}
	return deleted, nil
}

// History returns a session's turns in creation order.
func (s *Service) History(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	return s.store.GetHistory(ctx, sessionID)
}

// Summary returns the contents of a session's user turns in order.
func (s *Service) Summary(ctx context.Context, sessionID string) ([]string, error) {
	history, err := s.store.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answers := []string{}
	for _, t := range history {
		if t.Role == domain.RoleUser {
			answers = append(answers, t.Content)
		}
	}
	return answers, nil
}

// ListSessions returns the metadata index, newest first.
func (s *Service) ListSessions() []domain.SessionMeta {
	return s.index.List()
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength])
}
