// Package meter 统计会话上下文用量并判断是否接近上限
package meter

import (
	"unicode/utf8"

	"github.com/ashwinyue/prts/internal/model"
)

// 默认上限与告警比例
const (
	DefaultCeiling   = 20_000_000
	DefaultWarnRatio = 0.9
)

// Reading 用量读数
type Reading struct {
	Usage    int     `json:"usage"`
	Ceiling  int     `json:"ceiling"`
	Fraction float64 `json:"fraction"` // [0, 1]
	Warn     bool    `json:"warn"`
}

// Meter 上下文用量计量器
type Meter struct {
	Ceiling   int
	WarnRatio float64
}

// New 创建计量器，非法参数回退到默认值
func New(ceiling int, warnRatio float64) *Meter {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if warnRatio <= 0 || warnRatio > 1 {
		warnRatio = DefaultWarnRatio
	}
	return &Meter{Ceiling: ceiling, WarnRatio: warnRatio}
}

// Usage 会话全部消息文本的字符数之和
// 以 Unicode 码点计数，中英文每个字符都计 1
func (m *Meter) Usage(sess *model.ChatSession) int {
	if sess == nil {
		return 0
	}
	total := 0
	for _, msg := range sess.Messages {
		total += utf8.RuneCountInString(msg.Text)
	}
	return total
}

// Classify 按计量器配置分类
func (m *Meter) Classify(usage int) Reading {
	return Classify(usage, m.Ceiling, m.WarnRatio)
}

// Measure 计算会话用量并分类
func (m *Meter) Measure(sess *model.ChatSession) Reading {
	return m.Classify(m.Usage(sess))
}

// Classify 计算用量占比，超过 warnRatio*ceiling 时告警
func Classify(usage, ceiling int, warnRatio float64) Reading {
	r := Reading{Usage: usage, Ceiling: ceiling}
	if ceiling <= 0 {
		r.Fraction = 1
		r.Warn = usage > 0
		return r
	}

	r.Fraction = float64(usage) / float64(ceiling)
	if r.Fraction > 1 {
		r.Fraction = 1
	}
	if r.Fraction < 0 {
		r.Fraction = 0
	}
	r.Warn = float64(usage) > warnRatio*float64(ceiling)
	return r
}
