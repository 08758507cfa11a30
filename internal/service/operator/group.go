package operator

import (
	"context"
	"log"
	"sync"

	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/model"
)

// 无法识别说话人时使用的通用身份
const (
	FallbackAvatar = "https://picsum.photos/seed/rhodes/100"
	FallbackVoice  = model.DefaultVoiceID
)

// Speaker 回复消息的说话人身份
type Speaker struct {
	Name    string
	Avatar  string
	VoiceID string
}

// ResolveSpeaker 把群聊回复中的发言者名映射到干员头像与音色
func (d *Directory) ResolveSpeaker(name string) Speaker {
	if op, ok := d.FindByName(name); ok {
		return Speaker{Name: name, Avatar: op.Avatar, VoiceID: op.VoiceID}
	}
	return Speaker{Name: name, Avatar: FallbackAvatar, VoiceID: FallbackVoice}
}

// Roster 群组频道参与者
type Roster struct {
	mu    sync.RWMutex
	store kv.Store
	ids   []string
}

// NewRoster 创建参与者名单，从未保存时默认包含全部默认干员
func NewRoster(ctx context.Context, store kv.Store) *Roster {
	r := &Roster{store: store}

	var ids []string
	found, err := kv.GetJSON(ctx, store, kv.KeyGroupParticipants, &ids)
	switch {
	case err != nil:
		log.Printf("Warning: failed to load group participants, using defaults: %v", err)
		r.ids = DefaultParticipantIDs()
	case !found:
		r.ids = DefaultParticipantIDs()
	default:
		r.ids = ids
	}
	if r.ids == nil {
		r.ids = []string{}
	}
	return r
}

// IDs 当前参与者 ID
func (r *Roster) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.ids))
	copy(out, r.ids)
	return out
}

// Contains 是否为参与者
func (r *Roster) Contains(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return indexOf(r.ids, id) >= 0
}

// Toggle 切换参与状态，返回切换后是否参与
func (r *Roster) Toggle(ctx context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := false
	if i := indexOf(r.ids, id); i >= 0 {
		r.ids = append(r.ids[:i], r.ids[i+1:]...)
	} else {
		r.ids = append(r.ids, id)
		joined = true
	}
	r.saveLocked(ctx)
	return joined
}

// SelectAll 以目录中全部干员作为参与者
func (r *Roster) SelectAll(ctx context.Context, d *Directory) []string {
	ops := d.List()
	ids := make([]string, len(ops))
	for i, op := range ops {
		ids[i] = op.ID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = ids
	r.saveLocked(ctx)
	return append([]string(nil), ids...)
}

// DeselectAll 清空参与者
func (r *Roster) DeselectAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = []string{}
	r.saveLocked(ctx)
}

// Participants 按目录顺序返回仍存在的参与干员
func (r *Roster) Participants(d *Directory) []*model.Operator {
	return d.Select(r.IDs())
}

// saveLocked 请求取消后仍完成写入，避免内存与存储不一致
func (r *Roster) saveLocked(ctx context.Context) {
	if err := kv.SetJSON(context.WithoutCancel(ctx), r.store, kv.KeyGroupParticipants, r.ids); err != nil {
		log.Printf("Warning: failed to save group participants: %v", err)
	}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
