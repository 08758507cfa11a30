// Package operator 管理干员档案与群组频道参与者
package operator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ashwinyue/prts/internal/model"
)

var (
	// ErrNotFound 干员不存在
	ErrNotFound = errors.New("operator not found")
	// ErrDuplicateID 干员 ID 已存在
	ErrDuplicateID = errors.New("operator id already exists")
	// ErrReservedID 与群组频道占位 ID 冲突
	ErrReservedID = errors.New("operator id is reserved")
)

// 新建干员的默认档案
const (
	defaultName         = "New Operator"
	defaultAvatar       = "https://picsum.photos/200"
	defaultTachie       = "https://picsum.photos/600/1000"
	defaultDescription  = "New recruit."
	defaultPersonality  = "Ready for orders."
	defaultSystemPrompt = "You are a new operator."
	// CustomSpeaker 自定义 TTS 下新干员的默认说话人
	CustomSpeaker = "Default_Speaker"
)

// Directory 干员目录
type Directory struct {
	mu        sync.RWMutex
	persister Persister
	operators []*model.Operator
}

// NewDirectory 创建干员目录并加载已保存的干员
// 从未保存或数据损坏时使用默认干员
func NewDirectory(ctx context.Context, persister Persister) *Directory {
	d := &Directory{persister: persister}

	ops, found, err := persister.Load(ctx)
	switch {
	case err != nil:
		log.Printf("Warning: failed to load operators, using defaults: %v", err)
		d.operators = DefaultOperators()
	case !found:
		d.operators = DefaultOperators()
		d.saveLocked(ctx)
	default:
		d.operators = ops
	}
	return d
}

// List 按顺序返回全部干员副本
func (d *Directory) List() []*model.Operator {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*model.Operator, len(d.operators))
	for i, op := range d.operators {
		out[i] = clone(op)
	}
	return out
}

// Get 获取干员
func (d *Directory) Get(id string) (*model.Operator, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if i := d.indexLocked(id); i >= 0 {
		return clone(d.operators[i]), true
	}
	return nil, false
}

// FindByName 按显示名查找干员，用于把群聊回复映射到说话人
func (d *Directory) FindByName(name string) (*model.Operator, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, op := range d.operators {
		if op.Name == name {
			return clone(op), true
		}
	}
	return nil, false
}

// Select 按目录顺序返回 ids 中存在的干员
func (d *Directory) Select(ids []string) []*model.Operator {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*model.Operator, 0, len(ids))
	for _, op := range d.operators {
		if want[op.ID] {
			out = append(out, clone(op))
		}
	}
	return out
}

// CreateRequest 创建干员请求，空字段使用默认档案
type CreateRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	TachieURL    string `json:"tachieUrl"`
	Description  string `json:"description"`
	Personality  string `json:"personality"`
	SystemPrompt string `json:"systemPrompt"`
	Memory       string `json:"memory"`
	VoiceID      string `json:"voiceId"`
}

// Create 新增自定义干员
// customTTS 为 true 时默认音色使用自定义说话人
func (d *Directory) Create(ctx context.Context, req *CreateRequest, customTTS bool) (*model.Operator, error) {
	op := &model.Operator{
		ID:           strings.TrimSpace(req.ID),
		Name:         orDefault(req.Name, defaultName),
		Avatar:       orDefault(req.Avatar, defaultAvatar),
		TachieURL:    orDefault(req.TachieURL, defaultTachie),
		Description:  orDefault(req.Description, defaultDescription),
		Personality:  orDefault(req.Personality, defaultPersonality),
		SystemPrompt: orDefault(req.SystemPrompt, defaultSystemPrompt),
		Memory:       req.Memory,
		VoiceID:      req.VoiceID,
		IsCustom:     true,
	}
	if op.VoiceID == "" {
		op.VoiceID = model.DefaultVoiceID
		if customTTS {
			op.VoiceID = CustomSpeaker
		}
	}
	if op.ID == "" {
		op.ID = "op_" + uuid.New().String()
	}
	if op.ID == model.GroupChatID {
		return nil, ErrReservedID
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.indexLocked(op.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, op.ID)
	}
	d.operators = append(d.operators, op)
	d.saveLocked(ctx)
	return clone(op), nil
}

// UpdateRequest 更新干员请求，nil 字段保持不变
type UpdateRequest struct {
	Name            *string `json:"name"`
	Avatar          *string `json:"avatar"`
	TachieURL       *string `json:"tachieUrl"`
	Description     *string `json:"description"`
	Personality     *string `json:"personality"`
	SystemPrompt    *string `json:"systemPrompt"`
	Memory          *string `json:"memory"`
	VoiceID         *string `json:"voiceId"`
	VoiceSampleName *string `json:"voiceSampleName"`
	IsVoiceTrained  *bool   `json:"isVoiceTrained"`
}

// Update 更新干员档案
func (d *Directory) Update(ctx context.Context, id string, req *UpdateRequest) (*model.Operator, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	op := d.operators[i]

	setString(&op.Name, req.Name)
	setString(&op.Avatar, req.Avatar)
	setString(&op.TachieURL, req.TachieURL)
	setString(&op.Description, req.Description)
	setString(&op.Personality, req.Personality)
	setString(&op.SystemPrompt, req.SystemPrompt)
	setString(&op.Memory, req.Memory)
	setString(&op.VoiceID, req.VoiceID)
	setString(&op.VoiceSampleName, req.VoiceSampleName)
	if req.IsVoiceTrained != nil {
		op.IsVoiceTrained = *req.IsVoiceTrained
	}

	d.saveLocked(ctx)
	return clone(op), nil
}

// Delete 删除干员，不存在时返回 false
// 该干员的历史会话保留在会话存储中
func (d *Directory) Delete(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(id)
	if i < 0 {
		return false
	}
	d.operators = append(d.operators[:i], d.operators[i+1:]...)
	d.saveLocked(ctx)
	return true
}

// ApplyMemory 用摘要替换单干员上下文对应干员的长期记忆
// 群组上下文或干员不存在时返回 false
func (d *Directory) ApplyMemory(ctx context.Context, c model.Context, summary string) bool {
	if c.IsGroup() {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.indexLocked(c.OperatorID)
	if i < 0 {
		return false
	}
	d.operators[i].Memory = summary
	d.saveLocked(ctx)
	return true
}

func (d *Directory) indexLocked(id string) int {
	for i, op := range d.operators {
		if op.ID == id {
			return i
		}
	}
	return -1
}

// saveLocked 失败只记录日志，内存状态保持
func (d *Directory) saveLocked(ctx context.Context) {
	snapshot := make([]*model.Operator, len(d.operators))
	for i, op := range d.operators {
		snapshot[i] = clone(op)
	}
	if err := d.persister.Save(context.WithoutCancel(ctx), snapshot); err != nil {
		log.Printf("Warning: failed to save operators: %v", err)
	}
}

func clone(op *model.Operator) *model.Operator {
	cp := *op
	return &cp
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
