package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mindmirror-go/internal/model"
	"mindmirror-go/internal/repository"
	"mindmirror-go/pkg/llm"
	"mindmirror-go/pkg/log"
	"strings"
)

// ModelGateway 是 ChatService 依赖的推理能力，由 llm.Gateway 实现。
type ModelGateway interface {
	EnsureReady(ctx context.Context) bool
	Loaded() bool
	Complete(ctx context.Context, messages []llm.Message) (string, error)
	Stream(ctx context.Context, messages []llm.Message, writer llm.MessageWriter) error
}

// ChatService 定义了一次聊天交互的完整流程。
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (string, error)
	StreamChat(ctx context.Context, sessionID, message string, writer llm.MessageWriter) error
	// Reset 清空会话历史，与同一会话进行中的聊天串行执行。
	Reset(ctx context.Context, sessionID string) error
	ModelLoaded() bool
}

type chatService struct {
	gateway       ModelGateway
	conversations ConversationService
	// archive 为空表示不归档
	archive repository.ConversationRepository
	locks   *sessionLocks
}

// NewChatService 创建一个新的 ChatService 实例。archive 可以为 nil。
func NewChatService(gateway ModelGateway, conversations ConversationService, archive repository.ConversationRepository) ChatService {
	return &chatService{
		gateway:       gateway,
		conversations: conversations,
		archive:       archive,
		locks:         newSessionLocks(),
	}
}

func (s *chatService) ModelLoaded() bool {
	return s.gateway.Loaded()
}

func (s *chatService) Reset(ctx context.Context, sessionID string) error {
	unlock := s.locks.lock(sessionID)
	defer unlock()
	return s.conversations.Reset(ctx, sessionID)
}

// Chat 按顺序执行：确认模型就绪、校验消息、追加用户消息、构建 prompt、推理、追加助手回复。
// 同一会话的并发请求串行执行。
func (s *chatService) Chat(ctx context.Context, sessionID, message string) (string, error) {
	prompt, unlock, err := s.prepare(ctx, sessionID, message)
	if err != nil {
		return "", err
	}
	defer unlock()

	reply, err := s.gateway.Complete(ctx, toLLMMessages(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInference, err)
	}

	if err := s.finish(ctx, sessionID, message, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// StreamChat 与 Chat 流程相同，但把模型输出以 {"chunk":"..."} 的形式逐块写入 writer。
func (s *chatService) StreamChat(ctx context.Context, sessionID, message string, writer llm.MessageWriter) error {
	prompt, unlock, err := s.prepare(ctx, sessionID, message)
	if err != nil {
		return err
	}
	defer unlock()

	answerBuilder := &strings.Builder{}
	interceptor := &chunkInterceptor{next: writer, answer: answerBuilder}
	if err := s.gateway.Stream(ctx, toLLMMessages(prompt), interceptor); err != nil {
		return fmt.Errorf("%w: %v", ErrInference, err)
	}

	// 模型没有输出任何内容时不保存空回复
	if answerBuilder.Len() == 0 {
		log.Warnw("Stream finished without content", "sessionID", sessionID)
		return nil
	}
	return s.finish(ctx, sessionID, message, answerBuilder.String())
}

// prepare 完成推理之前的步骤，成功时调用方持有会话锁并负责释放。
func (s *chatService) prepare(ctx context.Context, sessionID, message string) ([]model.ChatMessage, func(), error) {
	if !s.gateway.EnsureReady(ctx) {
		return nil, nil, ErrModelUnavailable
	}
	if strings.TrimSpace(message) == "" {
		return nil, nil, ErrEmptyMessage
	}

	unlock := s.locks.lock(sessionID)
	if err := s.conversations.AppendUserTurn(ctx, sessionID, message); err != nil {
		unlock()
		return nil, nil, err
	}
	prompt, err := s.conversations.BuildPrompt(ctx, sessionID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return prompt, unlock, nil
}

func (s *chatService) finish(ctx context.Context, sessionID, question, answer string) error {
	// 即使请求已被取消，也保存已经生成的回复
	saveCtx := context.WithoutCancel(ctx)
	if err := s.conversations.AppendAssistantTurn(saveCtx, sessionID, answer); err != nil {
		return err
	}
	s.archiveExchange(saveCtx, sessionID, question, answer)
	return nil
}

// archiveExchange 归档失败只记录日志，不影响本次回复。
func (s *chatService) archiveExchange(ctx context.Context, sessionID, question, answer string) {
	if s.archive == nil {
		return
	}
	err := s.archive.Create(ctx, &model.Conversation{
		SessionID: sessionID,
		Question:  question,
		Answer:    answer,
	})
	if err != nil {
		log.Errorw("Failed to archive conversation", "sessionID", sessionID, "error", err)
	}
}

func toLLMMessages(msgs []model.ChatMessage) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// chunkInterceptor 捕获完整回复，并把原始分块包装成 {"chunk":"..."} 转发。
type chunkInterceptor struct {
	next   llm.MessageWriter
	answer *strings.Builder
}

// WriteMessage 满足 llm.MessageWriter 接口。
func (w *chunkInterceptor) WriteMessage(messageType int, data []byte) error {
	w.answer.Write(data)
	payload, err := json.Marshal(map[string]string{"chunk": string(data)})
	if err != nil {
		return err
	}
	return w.next.WriteMessage(messageType, payload)
}
