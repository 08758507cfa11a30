// Package kv 提供设备本地持久化的键值存储抽象
// 所有值均为整体覆盖写入的字符串（JSON 序列化后的结构）
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// 持久化 key
const (
	KeyOperators         = "prts_operators"
	KeyGroupParticipants = "prts_group_participants"
	KeySessions          = "prts_sessions_v2"
	KeyLanguage          = "prts_language"
	KeyTTSProvider       = "prts_tts_provider"
	KeyCustomTTSURL      = "prts_custom_tts_url"
	KeyUserAvatar        = "prts_user_avatar"
	KeyAPIKey            = "prts_api_key"
)

// ErrClosed 存储已关闭
var ErrClosed = errors.New("kv store closed")

// Store 键值存储接口
type Store interface {
	// Get 返回值以及是否存在
	Get(ctx context.Context, key string) (string, bool, error)
	// Set 整体覆盖写入
	Set(ctx context.Context, key, value string) error
}

// GetJSON 读取并反序列化，key 不存在时返回 found=false
func GetJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 序列化并写入
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}
