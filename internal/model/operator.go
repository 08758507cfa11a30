package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 可用的 Gemini 预置音色
var AvailableVoices = []string{"Puck", "Charon", "Kore", "Fenrir", "Zephyr"}

// DefaultVoiceID 默认音色
const DefaultVoiceID = "Puck"

// Operator 干员档案
type Operator struct {
	ID              string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Avatar          string    `gorm:"type:text" json:"avatar"`
	TachieURL       string    `gorm:"type:text" json:"tachieUrl,omitempty"`
	Description     string    `gorm:"type:text" json:"description"`
	Personality     string    `gorm:"type:text" json:"personality"`
	SystemPrompt    string    `gorm:"type:text" json:"systemPrompt"`
	Memory          string    `gorm:"type:text" json:"memory,omitempty"` // 长期记忆摘要
	VoiceID         string    `gorm:"size:64" json:"voiceId"`
	IsCustom        bool      `gorm:"default:false" json:"isCustom,omitempty"`
	VoiceSampleName string    `gorm:"size:255" json:"voiceSampleName,omitempty"`
	IsVoiceTrained  bool      `gorm:"default:false" json:"isVoiceTrained,omitempty"`
	Position        int       `gorm:"index" json:"-"` // 列表顺序
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// TableName 指定表名
func (Operator) TableName() string {
	return "operators"
}

// BeforeCreate GORM 钩子，创建前生成 UUID
func (o *Operator) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}
