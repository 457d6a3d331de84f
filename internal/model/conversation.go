// Package model 包含了应用的数据模型定义。
package model

import "time"

// 对话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage 代表会话历史中的单条消息，创建后不再修改。
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History 是按插入顺序排列的会话历史。
type History []ChatMessage

// Last 返回最近的 n 条消息（n 大于长度时返回全部）。返回值是副本。
func (h History) Last(n int) History {
	if n <= 0 {
		return History{}
	}
	start := len(h) - n
	if start < 0 {
		start = 0
	}
	out := make(History, len(h)-start)
	copy(out, h[start:])
	return out
}

// Conversation 代表一次归档的问答交互。
type Conversation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"type:varchar(64);index;not null" json:"sessionId"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Conversation) TableName() string {
	return "conversations"
}
