package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/prts/internal/i18n"
	"github.com/ashwinyue/prts/internal/model"
)

const summaryPromptTemplate = `Summarize the following Arknights roleplay conversation into a concise memory log (max 500 words).
Focus on key events, decisions made by the Doctor, and emotional shifts of the operators.
This summary will be used as context for future conversations.

Conversation:
%s`

// Summarize 把会话最近的消息压缩为记忆摘要
// 模型调用失败时返回本地化的失败提示，同时返回 ErrSummaryFailed，调用方不应把该提示写入记忆
func (s *Service) Summarize(ctx context.Context, sessionID string) (string, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}
	if len(sess.Messages) == 0 {
		return "", ErrEmptySession
	}

	prefs := s.prefs.Get()
	cm, err := s.models.SummaryModel(ctx, prefs.APIKey)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(summaryPromptTemplate, transcript(sess.Messages, s.summaryWindow))
	resp, err := cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		log.Printf("Warning: summary generation failed for %s: %v", sessionID, err)
		return i18n.T(prefs.Language, i18n.SummaryFailed), fmt.Errorf("%w: %v", ErrSummaryFailed, err)
	}
	return resp.Content, nil
}

// ApplySummary 把摘要写入会话所属干员的长期记忆
func (s *Service) ApplySummary(ctx context.Context, sessionID, summary string) (bool, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return false, ErrSessionNotFound
	}
	return s.operators.ApplyMemory(ctx, sess.Context(), summary), nil
}

// transcript 最近 window 条消息，每行 "发言者: 内容"
func transcript(msgs []model.Message, window int) string {
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = m.SenderName + ": " + m.Text
	}
	return strings.Join(lines, "\n")
}
