package model

import "strings"

// GroupChatID 群组频道在持久化数据中的占位 ID
const GroupChatID = "group"

// ContextKind 会话上下文类型
type ContextKind int

const (
	// ContextSingle 单个干员
	ContextSingle ContextKind = iota
	// ContextGroup 群组频道
	ContextGroup
)

// Context 会话所属的上下文：单个干员或群组频道
type Context struct {
	Kind       ContextKind
	OperatorID string
}

// SingleContext 创建单干员上下文
func SingleContext(operatorID string) Context {
	return Context{Kind: ContextSingle, OperatorID: operatorID}
}

// GroupContext 创建群组上下文
func GroupContext() Context {
	return Context{Kind: ContextGroup}
}

// ParseContext 从持久化/URL 形式解析上下文
func ParseContext(s string) Context {
	s = strings.TrimSpace(s)
	if s == GroupChatID {
		return GroupContext()
	}
	return SingleContext(s)
}

// IsGroup 是否为群组频道
func (c Context) IsGroup() bool {
	return c.Kind == ContextGroup
}

// String 返回持久化形式
func (c Context) String() string {
	switch c.Kind {
	case ContextGroup:
		return GroupChatID
	case ContextSingle:
		return c.OperatorID
	default:
		return c.OperatorID
	}
}
