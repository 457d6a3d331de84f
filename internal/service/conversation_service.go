package service

import (
	"context"
	"fmt"
	"mindmirror-go/internal/model"
	"mindmirror-go/internal/repository"
	"strings"
	"time"
)

// ConversationService 维护会话中的对话历史，并构建发送给模型的 prompt。
type ConversationService interface {
	AppendUserTurn(ctx context.Context, sessionID, text string) error
	AppendAssistantTurn(ctx context.Context, sessionID, text string) error
	BuildPrompt(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
	Reset(ctx context.Context, sessionID string) error
	History(ctx context.Context, sessionID string) (model.History, error)
}

type conversationService struct {
	repo         repository.SessionRepository
	systemPrompt string
	window       int
	now          func() time.Time
}

// NewConversationService 创建一个新的 ConversationService。
// window 为构建 prompt 时读取的最近历史条数。
func NewConversationService(repo repository.SessionRepository, systemPrompt string, window int) ConversationService {
	return &conversationService{
		repo:         repo,
		systemPrompt: systemPrompt,
		window:       window,
		now:          time.Now,
	}
}

// AppendUserTurn 追加一条用户消息；空白消息返回 ErrEmptyMessage。
func (s *conversationService) AppendUserTurn(ctx context.Context, sessionID, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	return s.appendTurn(ctx, sessionID, model.RoleUser, text)
}

// AppendAssistantTurn 追加一条助手消息。
func (s *conversationService) AppendAssistantTurn(ctx context.Context, sessionID, text string) error {
	return s.appendTurn(ctx, sessionID, model.RoleAssistant, text)
}

func (s *conversationService) appendTurn(ctx context.Context, sessionID, role, text string) error {
	history, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	history = append(history, model.ChatMessage{
		Role:      role,
		Content:   text,
		Timestamp: s.now(),
	})
	if err := s.repo.Put(ctx, sessionID, history); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	return nil
}

// BuildPrompt 返回固定的系统指令加上最近 window 条历史，顺序与历史一致。
func (s *conversationService) BuildPrompt(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	history, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	recent := history.Last(s.window)

	msgs := make([]model.ChatMessage, 0, len(recent)+1)
	msgs = append(msgs, model.ChatMessage{Role: model.RoleSystem, Content: s.systemPrompt})
	msgs = append(msgs, recent...)
	return msgs, nil
}

// Reset 清空会话历史，可重复调用。
func (s *conversationService) Reset(ctx context.Context, sessionID string) error {
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	return nil
}

// History 返回会话的完整历史。
func (s *conversationService) History(ctx context.Context, sessionID string) (model.History, error) {
	history, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionStore, err)
	}
	return history, nil
}
