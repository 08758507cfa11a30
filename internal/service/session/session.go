// Package session 管理按干员上下文划分的聊天会话
package session

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/model"
)

// Options 会话存储选项
type Options struct {
	// Now 时钟，默认 time.Now
	Now func() time.Time
	// DefaultTitle 新会话标题（随界面语言变化）
	DefaultTitle func() string
}

// Store 会话存储，所有会话的唯一数据源
// 每个上下文一旦被访问过，始终至少保留一个会话
type Store struct {
	mu       sync.RWMutex
	kv       kv.Store
	sessions map[string]*model.ChatSession
	active   map[string]string // 上下文 -> 当前会话 ID
	menuOpen bool

	now   func() time.Time
	title func() string
}

// NewStore 创建会话存储并从 kv 加载已有会话
// 数据缺失或损坏时以空集合启动
func NewStore(ctx context.Context, store kv.Store, opts *Options) *Store {
	if opts == nil {
		opts = &Options{}
	}
	s := &Store{
		kv:       store,
		sessions: make(map[string]*model.ChatSession),
		active:   make(map[string]string),
		now:      opts.Now,
		title:    opts.DefaultTitle,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.title == nil {
		s.title = func() string { return "New Session" }
	}
	s.load(ctx)
	return s
}

// Create 为上下文创建新会话并设为当前会话
func (s *Store) Create(ctx context.Context, c model.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.createLocked(c)
	s.saveLocked(ctx)
	return id
}

// Delete 删除会话，id 不存在时返回 false
// 删除当前会话后切换到同上下文最近的会话，若已无会话则新建
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	delete(s.sessions, id)

	c := sess.Context()
	key := c.String()
	remaining := s.listLocked(key)

	switch {
	case len(remaining) == 0:
		s.createLocked(c)
	case s.active[key] == id:
		s.active[key] = remaining[0].ID
	}

	s.saveLocked(ctx)
	return true
}

// Rename 重命名会话
// 空白标题被丢弃，避免误提交清空标题
func (s *Store) Rename(ctx context.Context, id, title string) bool {
	if strings.TrimSpace(title) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Title = title
	s.saveLocked(ctx)
	return true
}

// Append 按给定顺序追加消息
func (s *Store) Append(ctx context.Context, id string, msgs ...model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Messages = append(sess.Messages, msgs...)
	s.saveLocked(ctx)
	return true
}

// ResolveActive 解析上下文的当前会话
// currentActiveID 属于该上下文时保持不变，否则选最近的会话，没有会话时新建
// 输入与会话集合不变时多次调用结果相同，且不会重复创建
func (s *Store) ResolveActive(ctx context.Context, c model.Context, currentActiveID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := c.String()
	if cur, ok := s.sessions[currentActiveID]; ok && cur.OperatorID == key {
		s.active[key] = currentActiveID
		return currentActiveID
	}

	if list := s.listLocked(key); len(list) > 0 {
		s.active[key] = list[0].ID
		return list[0].ID
	}

	id := s.createLocked(c)
	s.saveLocked(ctx)
	return id
}

// Active 返回上下文记录的当前会话 ID，未解析过时为空
func (s *Store) Active(c model.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[c.String()]
}

// Get 获取会话副本
func (s *Store) Get(id string) (*model.ChatSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// List 按创建时间倒序列出上下文的会话副本
func (s *Store) List(c model.Context) []*model.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.listLocked(c.String())
	out := make([]*model.ChatSession, len(list))
	for i, sess := range list {
		out[i] = sess.Clone()
	}
	return out
}

// Snapshot 返回全部会话的副本，key 为会话 ID
func (s *Store) Snapshot() map[string]*model.ChatSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*model.ChatSession, len(s.sessions))
	for id, sess := range s.sessions {
		out[id] = sess.Clone()
	}
	return out
}

// Len 会话总数
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// MenuOpen 会话选择菜单是否展开
func (s *Store) MenuOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.menuOpen
}

// SetMenuOpen 展开或收起会话选择菜单
func (s *Store) SetMenuOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menuOpen = open
}

// createLocked 调用方需持有写锁
func (s *Store) createLocked(c model.Context) string {
	now := s.now()
	key := c.String()

	// 同一毫秒内多次创建时追加计数器
	id := fmt.Sprintf("%s_%d", key, now.UnixMilli())
	for n := 1; s.sessions[id] != nil; n++ {
		id = fmt.Sprintf("%s_%d_%d", key, now.UnixMilli(), n)
	}

	s.sessions[id] = &model.ChatSession{
		ID:         id,
		OperatorID: key,
		Title:      s.title(),
		CreatedAt:  now.UnixMilli(),
		Messages:   []model.Message{},
	}
	s.active[key] = id
	s.menuOpen = false
	return id
}

// listLocked 创建时间倒序，相同时间按 ID 升序
func (s *Store) listLocked(key string) []*model.ChatSession {
	list := make([]*model.ChatSession, 0)
	for _, sess := range s.sessions {
		if sess.OperatorID == key {
			list = append(list, sess)
		}
	}
	sortByRecency(list)
	return list
}

func sortByRecency(list []*model.ChatSession) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt > list[j].CreatedAt
		}
		return list[i].ID < list[j].ID
	})
}

// load 从 kv 加载会话集合
func (s *Store) load(ctx context.Context) {
	if s.kv == nil {
		return
	}

	var loaded map[string]*model.ChatSession
	found, err := kv.GetJSON(ctx, s.kv, kv.KeySessions, &loaded)
	if err != nil {
		log.Printf("Warning: failed to load sessions, starting fresh: %v", err)
		return
	}
	if !found {
		return
	}

	for id, sess := range loaded {
		if sess == nil {
			continue
		}
		sess.ID = id
		if sess.Messages == nil {
			sess.Messages = []model.Message{}
		}
		s.sessions[id] = sess
	}
}

// saveLocked 整体覆盖写入，失败只记录日志
// 内存状态已经修改，请求被取消时仍需完成写入
func (s *Store) saveLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	if err := kv.SetJSON(context.WithoutCancel(ctx), s.kv, kv.KeySessions, s.sessions); err != nil {
		log.Printf("Warning: failed to save sessions: %v", err)
	}
}
