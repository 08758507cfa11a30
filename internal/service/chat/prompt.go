package chat

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ashwinyue/prts/internal/model"
)

const groupPromptTemplate = `You are simulating a group chat at Rhodes Island (Arknights). The user is the Doctor.

Current Participants on the Channel:
%s

Instructions:
1. Respond as one or more of the participants based on the user's input and context.
2. IMPORTANT: You must output a valid JSON array of objects. Each object represents a separate message.
3. Format: [{"sender": "CharacterName", "text": "Message content..."}, {"sender": "AnotherCharacter", "text": "Reply..."}]
4. Do not include any markdown formatting (like ` + "```json" + `) outside the array if possible, just the raw JSON or wrapped in code block.
5. Maintain accurate character personalities.
`

const continuityLine = "System: You are currently talking to the Doctor. Use the provided Memory/Context to maintain continuity."

// singleSystemPrompt 干员设定、长期记忆与连续性提示
func singleSystemPrompt(op *model.Operator) string {
	var sb strings.Builder
	sb.WriteString(op.SystemPrompt)
	if op.Memory != "" {
		sb.WriteString("\n\n[PERSISTENT MEMORY / CONTEXT]:\n")
		sb.WriteString(op.Memory)
		sb.WriteString("\n\n")
	}
	sb.WriteString("\n\n")
	sb.WriteString(continuityLine)
	return sb.String()
}

// groupSystemPrompt 列出频道内全部参与者
func groupSystemPrompt(participants []*model.Operator) string {
	infos := make([]string, len(participants))
	for i, op := range participants {
		memory := op.Memory
		if memory == "" {
			memory = "None"
		}
		infos[i] = fmt.Sprintf("Name: %s\nTraits: %s\nContext: %s", op.Name, op.Personality, memory)
	}
	return fmt.Sprintf(groupPromptTemplate, strings.Join(infos, "\n---\n"))
}

// buildHistory 转换为模型输入，模型消息带上 [发言者] 前缀以区分群聊中的多个角色
func buildHistory(system string, history []model.Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	msgs = append(msgs, schema.SystemMessage(system))
	for _, m := range history {
		if m.Role == model.RoleModel {
			msgs = append(msgs, schema.AssistantMessage(fmt.Sprintf("[%s]: %s", m.SenderName, m.Text), nil))
			continue
		}
		msgs = append(msgs, schema.UserMessage(m.Text))
	}
	return msgs
}
