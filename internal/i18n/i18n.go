// Package i18n 界面文案（中 / 英）
package i18n

// Language 界面语言
type Language string

const (
	LangZH Language = "zh"
	LangEN Language = "en"
)

// 文案 key
const (
	DefaultSessionTitle = "default_session_title"
	ConnectionLost      = "connection_lost"
	SummaryFailed       = "summary_failed"
	EmptyReply          = "empty_reply"
)

var translations = map[Language]map[string]string{
	LangZH: {
		DefaultSessionTitle: "新会话",
		ConnectionLost:      "与 PRTS 神经网络的连接已中断。",
		SummaryFailed:       "摘要生成失败。",
		EmptyReply:          "...",
	},
	LangEN: {
		DefaultSessionTitle: "New Session",
		ConnectionLost:      "Connection to PRTS Neural Network interrupted.",
		SummaryFailed:       "Summary generation failed.",
		EmptyReply:          "...",
	},
}

// Parse 解析语言标签，未知值回退到中文
func Parse(tag string) Language {
	switch Language(tag) {
	case LangEN:
		return LangEN
	default:
		return LangZH
	}
}

// T 返回文案，缺失时返回 key 本身
func T(lang Language, key string) string {
	if table, ok := translations[lang]; ok {
		if s, ok := table[key]; ok {
			return s
		}
	}
	return key
}
