package chat

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// SystemSender 无法归属到干员的回复使用的发言者
const SystemSender = "System"

// Reply 一条待写入会话的回复
type Reply struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// ParseGroupReply 解析群聊 JSON 回复
// 先去除代码块标记，解析失败时尝试修复，仍失败或不是数组时整段作为 System 消息
func ParseGroupReply(raw string) []Reply {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	if replies, ok := decodeReplies(clean); ok {
		return replies
	}

	repaired, err := jsonrepair.JSONRepair(clean)
	if err == nil {
		if replies, ok := decodeReplies(repaired); ok {
			return replies
		}
	}
	return []Reply{{Sender: SystemSender, Text: raw}}
}

func decodeReplies(s string) ([]Reply, bool) {
	if !strings.HasPrefix(s, "[") {
		return nil, false
	}
	var replies []Reply
	if err := json.Unmarshal([]byte(s), &replies); err != nil {
		return nil, false
	}
	if replies == nil {
		replies = []Reply{}
	}
	return replies, true
}
