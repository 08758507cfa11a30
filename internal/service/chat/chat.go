// Package chat 组装提示词、调用对话模型并把回复写入会话
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/google/uuid"

	"github.com/ashwinyue/prts/internal/i18n"
	domain "github.com/ashwinyue/prts/internal/model"
	"github.com/ashwinyue/prts/internal/service/llm"
	"github.com/ashwinyue/prts/internal/service/operator"
	"github.com/ashwinyue/prts/internal/service/preference"
	"github.com/ashwinyue/prts/internal/service/session"
)

var (
	// ErrEmptyInput 输入为空
	ErrEmptyInput = errors.New("message text is required")
	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoOperator 目录中没有可用干员
	ErrNoOperator = errors.New("no operator available")
	// ErrEmptySession 会话没有消息可供摘要
	ErrEmptySession = errors.New("session has no messages")
	// ErrSummaryFailed 摘要模型调用失败
	ErrSummaryFailed = errors.New("summary generation failed")
)

// Models 按凭证提供对话模型
type Models interface {
	ChatModel(ctx context.Context, apiKey string) (model.BaseChatModel, error)
	SummaryModel(ctx context.Context, apiKey string) (model.BaseChatModel, error)
}

// Preferences 读取当前偏好
type Preferences interface {
	Get() preference.Preferences
}

// Options 对话服务选项
type Options struct {
	UserName      string // 用户消息的发言者名
	SummaryWindow int    // 摘要使用的最近消息数
	Now           func() time.Time
}

// Service 对话编排服务
type Service struct {
	sessions  *session.Store
	operators *operator.Directory
	roster    *operator.Roster
	models    Models
	prefs     Preferences

	userName      string
	summaryWindow int
	now           func() time.Time
}

// NewService 创建对话服务
func NewService(sessions *session.Store, operators *operator.Directory, roster *operator.Roster,
	models Models, prefs Preferences, opts *Options) *Service {
	if opts == nil {
		opts = &Options{}
	}
	s := &Service{
		sessions:      sessions,
		operators:     operators,
		roster:        roster,
		models:        models,
		prefs:         prefs,
		userName:      opts.UserName,
		summaryWindow: opts.SummaryWindow,
		now:           opts.Now,
	}
	if s.userName == "" {
		s.userName = "Doctor"
	}
	if s.summaryWindow <= 0 {
		s.summaryWindow = 50
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Send 追加用户消息并生成回复，返回新写入的回复消息
// 调用模型失败时写入一条 System 提示而不是返回错误
func (s *Service) Send(ctx context.Context, sessionID, text string) ([]domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	prefs := s.prefs.Get()
	cm, err := s.models.ChatModel(ctx, prefs.APIKey)
	if err != nil {
		return nil, err
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	// 先确定回复方，失败时不写入用户消息
	c := sess.Context()
	var (
		op           *domain.Operator
		participants []*domain.Operator
		speaker      func(name string) operator.Speaker
	)
	if c.IsGroup() {
		participants = s.roster.Participants(s.operators)
		speaker = s.operators.ResolveSpeaker
	} else {
		if op, err = s.currentOperator(c.OperatorID); err != nil {
			return nil, err
		}
		speaker = func(name string) operator.Speaker {
			return operator.Speaker{Name: name, Avatar: op.Avatar, VoiceID: op.VoiceID}
		}
	}

	now := s.now()
	userMsg := domain.Message{
		ID:         uuid.New().String(),
		Role:       domain.RoleUser,
		SenderName: s.userName,
		Text:       text,
		Timestamp:  now.UnixMilli(),
		Avatar:     prefs.UserAvatar,
	}
	if !s.sessions.Append(ctx, sessionID, userMsg) {
		return nil, ErrSessionNotFound
	}
	history := append(sess.Messages, userMsg)

	var replies []Reply
	if c.IsGroup() {
		replies = s.generateGroup(ctx, cm, prefs.Language, participants, history)
	} else {
		replies = s.generateSingle(ctx, cm, prefs.Language, op, history)
	}

	// 回复时间戳依次错开，保证显示顺序稳定
	base := s.now().UnixMilli()
	out := make([]domain.Message, len(replies))
	for i, r := range replies {
		sp := speaker(r.Sender)
		out[i] = domain.Message{
			ID:         uuid.New().String(),
			Role:       domain.RoleModel,
			SenderName: r.Sender,
			Text:       r.Text,
			Timestamp:  base + int64(i)*10,
			Avatar:     sp.Avatar,
			VoiceID:    sp.VoiceID,
		}
	}

	if len(out) > 0 && !s.sessions.Append(ctx, sessionID, out...) {
		// 等待回复期间会话被删除
		log.Printf("Warning: session %s deleted before reply was stored", sessionID)
		return nil, ErrSessionNotFound
	}
	return out, nil
}

// currentOperator 干员已被删除时退回目录中的第一个干员
func (s *Service) currentOperator(id string) (*domain.Operator, error) {
	if op, ok := s.operators.Get(id); ok {
		return op, nil
	}
	if ops := s.operators.List(); len(ops) > 0 {
		return ops[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoOperator, id)
}

func (s *Service) generateSingle(ctx context.Context, cm model.BaseChatModel, lang i18n.Language,
	op *domain.Operator, history []domain.Message) []Reply {
	input := buildHistory(singleSystemPrompt(op), history)

	resp, err := cm.Generate(ctx, input, llm.WithResponseMIMEType(llm.MIMEText))
	if err != nil {
		log.Printf("Warning: chat generation failed for %s: %v", op.ID, err)
		return []Reply{{Sender: SystemSender, Text: i18n.T(lang, i18n.ConnectionLost)}}
	}
	return []Reply{{Sender: op.Name, Text: orEmptyReply(resp.Content, lang)}}
}

func (s *Service) generateGroup(ctx context.Context, cm model.BaseChatModel, lang i18n.Language,
	participants []*domain.Operator, history []domain.Message) []Reply {
	input := buildHistory(groupSystemPrompt(participants), history)

	resp, err := cm.Generate(ctx, input, llm.WithResponseMIMEType(llm.MIMEJSON))
	if err != nil {
		log.Printf("Warning: group chat generation failed: %v", err)
		return []Reply{{Sender: SystemSender, Text: i18n.T(lang, i18n.ConnectionLost)}}
	}
	return ParseGroupReply(orEmptyReply(resp.Content, lang))
}

func orEmptyReply(text string, lang i18n.Language) string {
	if text == "" {
		return i18n.T(lang, i18n.EmptyReply)
	}
	return text
}
