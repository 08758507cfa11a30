package model

// Role 消息角色
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message 聊天消息，追加后不再修改
type Message struct {
	ID         string `json:"id"`
	Role       Role   `json:"role"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // 毫秒
	Avatar     string `json:"avatar,omitempty"`
	VoiceID    string `json:"voiceId,omitempty"`
}

// ChatSession 聊天会话
type ChatSession struct {
	ID         string    `json:"id"`
	OperatorID string    `json:"operatorId"` // 群组频道为 "group"
	Title      string    `json:"title"`
	CreatedAt  int64     `json:"createdAt"` // 毫秒
	Messages   []Message `json:"messages"`
}

// Context 返回会话所属上下文
func (s *ChatSession) Context() Context {
	return ParseContext(s.OperatorID)
}

// Clone 深拷贝，供只读调用方使用
func (s *ChatSession) Clone() *ChatSession {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Messages = make([]Message, len(s.Messages))
	copy(cp.Messages, s.Messages)
	return &cp
}
