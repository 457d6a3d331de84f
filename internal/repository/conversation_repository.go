package repository

import (
	"context"
	"fmt"
	"mindmirror-go/internal/model"

	"gorm.io/gorm"
)

// ConversationRepository 定义了问答归档的操作接口。
type ConversationRepository interface {
	Create(ctx context.Context, conversation *model.Conversation) error
}

// conversationRepository 是 ConversationRepository 接口的 GORM 实现。
type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository 创建一个新的 ConversationRepository 实例。
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// Create 写入一条问答记录。
func (r *conversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return fmt.Errorf("failed to archive conversation: %w", err)
	}
	return nil
}
