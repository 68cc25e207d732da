package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nudduck.com/nudduck/internal/ai"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
)

type SimulationService interface {
	GetUserSessions(ctx context.Context, userID uuid.UUID) (*dto.ChatHistoryResponse, error)
	GetSessionHistory(ctx context.Context, userID, sessionID uuid.UUID) (*dto.ChatMessagesResponse, error)
	// HandleSession resumes the user's most recent session, or creates a fresh
	// one when none exists or startNewChat is set.
	HandleSession(ctx context.Context, userID uuid.UUID, startNewChat bool) (*dto.StartChatResponse, error)
	Ask(ctx context.Context, userID uuid.UUID, req dto.AskRequest) (*dto.AskResponse, error)
}

type simulationService struct {
	chatRepo  repository.ChatRepository
	generator ai.AnswerGenerator
}

func NewSimulationService(chatRepo repository.ChatRepository, generator ai.AnswerGenerator) SimulationService {
	return &simulationService{
		chatRepo:  chatRepo,
		generator: generator,
	}
}

func (s *simulationService) GetUserSessions(ctx context.Context, userID uuid.UUID) (*dto.ChatHistoryResponse, error) {
	sessions, err := s.chatRepo.FindSessionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChatHistoryResponse{
		History: make([]dto.ChatSessionResponse, 0, len(sessions)),
	}
	for _, session := range sessions {
		resp.History = append(resp.History, dto.ChatSessionResponse{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
		})
	}

	return resp, nil
}

func (s *simulationService) GetSessionHistory(ctx context.Context, userID, sessionID uuid.UUID) (*dto.ChatMessagesResponse, error) {
	session, err := s.chatRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := CheckOwnership(userID, session.UserID); err != nil {
		return nil, err
	}

	messages, err := s.chatRepo.FindMessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChatMessagesResponse{
		Messages: make([]dto.ChatMessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, dto.ChatMessageResponse{
			Sender:    m.Sender,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}

	return resp, nil
}

func (s *simulationService) HandleSession(ctx context.Context, userID uuid.UUID, startNewChat bool) (*dto.StartChatResponse, error) {
	if !startNewChat {
		latest, err := s.chatRepo.FindLatestSessionByUser(ctx, userID)
		if err == nil {
			return &dto.StartChatResponse{SessionID: latest.ID}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// No previous session, fall through and create one
	}

	session := &model.ChatSession{UserID: userID}
	if err := s.chatRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &dto.StartChatResponse{SessionID: session.ID}, nil
}

func (s *simulationService) Ask(ctx context.Context, userID uuid.UUID, req dto.AskRequest) (*dto.AskResponse, error) {
	session, err := s.chatRepo.FindSessionByID(ctx, req.SessionID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := CheckOwnership(userID, session.UserID); err != nil {
		return nil, err
	}

	answer, err := s.generator.GenerateAnswer(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	userMsg := &model.ChatMessage{
		SessionID: session.ID,
		Sender:    model.SenderUser,
		Message:   req.Query,
	}
	aiMsg := &model.ChatMessage{
		SessionID: session.ID,
		Sender:    model.SenderAI,
		Message:   answer,
	}

	if err := s.chatRepo.CreateExchange(ctx, userMsg, aiMsg); err != nil {
		return nil, err
	}

	return &dto.AskResponse{
		Query:  req.Query,
		Answer: answer,
	}, nil
}
