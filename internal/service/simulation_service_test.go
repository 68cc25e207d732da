package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/service"
	"nudduck.com/nudduck/pkg/apperror"
)

type fakeChatRepo struct {
	mu       sync.Mutex
	sessions []*model.ChatSession
	messages []*model.ChatMessage
}

func (r *fakeChatRepo) CreateSession(ctx context.Context, session *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	session.CreatedAt = time.Now()
	stored := *session
	r.sessions = append(r.sessions, &stored)
	return nil
}

func (r *fakeChatRepo) FindSessionByID(ctx context.Context, id uuid.UUID) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) FindSessionsByUser(ctx context.Context, userID uuid.UUID) ([]*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Newest first
	var out []*model.ChatSession
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID == userID {
			copied := *r.sessions[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) FindLatestSessionByUser(ctx context.Context, userID uuid.UUID) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].UserID == userID {
			copied := *r.sessions[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeChatRepo) FindMessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*model.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*model.ChatMessage
	for _, m := range r.messages {
		if m.SessionID == sessionID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeChatRepo) CreateExchange(ctx context.Context, userMsg, aiMsg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range []*model.ChatMessage{userMsg, aiMsg} {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		stored := *m
		r.messages = append(r.messages, &stored)
	}
	return nil
}

type fakeGenerator struct {
	answer string
	err    error
	calls  int
}

func (g *fakeGenerator) GenerateAnswer(ctx context.Context, question string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func TestHandleSession_CreatesWhenNoneExists(t *testing.T) {
	repo := &fakeChatRepo{}
	svc := service.NewSimulationService(repo, &fakeGenerator{})
	userID := uuid.New()

	resp, err := svc.HandleSession(context.Background(), userID, false)
	if err != nil {
		t.Fatalf("HandleSession: %v", err)
	}
	if resp.SessionID == uuid.Nil {
		t.Fatal("no session created")
	}

	session, err := repo.FindSessionByID(context.Background(), resp.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if session.UserID != userID {
		t.Errorf("session user = %v, want %v", session.UserID, userID)
	}
}

func TestHandleSession_ResumesLatest(t *testing.T) {
	repo := &fakeChatRepo{}
	svc := service.NewSimulationService(repo, &fakeGenerator{})
	userID := uuid.New()

	older := &model.ChatSession{UserID: userID}
	latest := &model.ChatSession{UserID: userID}
	for _, s := range []*model.ChatSession{older, latest} {
		if err := repo.CreateSession(context.Background(), s); err != nil {
			t.Fatalf("seed session: %v", err)
		}
	}

	resp, err := svc.HandleSession(context.Background(), userID, false)
	if err != nil {
		t.Fatalf("HandleSession: %v", err)
	}
	if resp.SessionID != latest.ID {
		t.Errorf("resumed session = %v, want latest %v", resp.SessionID, latest.ID)
	}
	if len(repo.sessions) != 2 {
		t.Errorf("sessions = %d, want 2 (no new session on resume)", len(repo.sessions))
	}
}

func TestHandleSession_StartNewChat(t *testing.T) {
	repo := &fakeChatRepo{}
	svc := service.NewSimulationService(repo, &fakeGenerator{})
	userID := uuid.New()

	existing := &model.ChatSession{UserID: userID}
	if err := repo.CreateSession(context.Background(), existing); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	resp, err := svc.HandleSession(context.Background(), userID, true)
	if err != nil {
		t.Fatalf("HandleSession: %v", err)
	}
	if resp.SessionID == existing.ID {
		t.Error("start_new_chat resumed the old session")
	}
}

func TestAsk_PersistsBothTurns(t *testing.T) {
	repo := &fakeChatRepo{}
	gen := &fakeGenerator{answer: "Tell me about a conflict you resolved."}
	svc := service.NewSimulationService(repo, gen)
	userID := uuid.New()

	session := &model.ChatSession{UserID: userID}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	resp, err := svc.Ask(context.Background(), userID, dto.AskRequest{
		SessionID: session.ID,
		Query:     "I led a team project last year.",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Answer != gen.answer {
		t.Errorf("answer = %q, want %q", resp.Answer, gen.answer)
	}

	messages, _ := repo.FindMessagesBySession(context.Background(), session.ID)
	if len(messages) != 2 {
		t.Fatalf("stored messages = %d, want 2", len(messages))
	}
	if messages[0].Sender != model.SenderUser || messages[0].Message != "I led a team project last year." {
		t.Errorf("unexpected user turn: %+v", messages[0])
	}
	if messages[1].Sender != model.SenderAI || messages[1].Message != gen.answer {
		t.Errorf("unexpected AI turn: %+v", messages[1])
	}
}

func TestAsk_Forbidden(t *testing.T) {
	repo := &fakeChatRepo{}
	gen := &fakeGenerator{answer: "hello"}
	svc := service.NewSimulationService(repo, gen)

	session := &model.ChatSession{UserID: uuid.New()}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	_, err := svc.Ask(context.Background(), uuid.New(), dto.AskRequest{SessionID: session.ID, Query: "hi"})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on forbidden ask", gen.calls)
	}
	if len(repo.messages) != 0 {
		t.Errorf("messages stored on forbidden ask: %d", len(repo.messages))
	}
}

func TestAsk_SessionNotFound(t *testing.T) {
	svc := service.NewSimulationService(&fakeChatRepo{}, &fakeGenerator{})

	_, err := svc.Ask(context.Background(), uuid.New(), dto.AskRequest{SessionID: uuid.New(), Query: "hi"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAsk_GeneratorFailureStoresNothing(t *testing.T) {
	repo := &fakeChatRepo{}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	svc := service.NewSimulationService(repo, gen)
	userID := uuid.New()

	session := &model.ChatSession{UserID: userID}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	if _, err := svc.Ask(context.Background(), userID, dto.AskRequest{SessionID: session.ID, Query: "hi"}); err == nil {
		t.Fatal("expected error from failing generator")
	}
	if len(repo.messages) != 0 {
		t.Errorf("messages stored after generator failure: %d", len(repo.messages))
	}
}

func TestGetSessionHistory(t *testing.T) {
	repo := &fakeChatRepo{}
	gen := &fakeGenerator{answer: "Why this company?"}
	svc := service.NewSimulationService(repo, gen)
	userID := uuid.New()

	session := &model.ChatSession{UserID: userID}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := svc.Ask(context.Background(), userID, dto.AskRequest{SessionID: session.ID, Query: "hello"}); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	resp, err := svc.GetSessionHistory(context.Background(), userID, session.ID)
	if err != nil {
		t.Fatalf("GetSessionHistory: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(resp.Messages))
	}

	// Another user cannot read the session
	if _, err := svc.GetSessionHistory(context.Background(), uuid.New(), session.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
