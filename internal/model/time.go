package model

import (
	"time"
)

// DisplayTimeLayout 是返回给前端的时间格式。
const DisplayTimeLayout = "2006-01-02 15:04:05"

// LocalTime 在 JSON 中序列化为服务器本地时区的 DisplayTimeLayout 格式。
type LocalTime time.Time

// MarshalJSON 实现 json.Marshaler 接口，零值输出为 null。
func (t LocalTime) MarshalJSON() ([]byte, error) {
	tt := time.Time(t)
	if tt.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + tt.Local().Format(DisplayTimeLayout) + `"`), nil
}

// HistoryEntry 是 /history 接口返回的单条消息。
type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp LocalTime `json:"timestamp"`
}

// Entries 把会话历史转换为对外展示的格式。
func (h History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(h))
	for _, m := range h {
		out = append(out, HistoryEntry{Role: m.Role, Content: m.Content, Timestamp: LocalTime(m.Timestamp)})
	}
	return out
}
