package handler

import (
	"github.com/ashwinyue/prts/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Session    *SessionHandler
	Operator   *OperatorHandler
	Group      *GroupHandler
	Preference *PreferenceHandler
	Speech     *SpeechHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Session:    NewSessionHandler(svc),
		Operator:   NewOperatorHandler(svc),
		Group:      NewGroupHandler(svc),
		Preference: NewPreferenceHandler(svc),
		Speech:     NewSpeechHandler(svc),
	}
}
