package service

import (
	"context"
	"log"

	"github.com/ashwinyue/prts/internal/config"
	"github.com/ashwinyue/prts/internal/i18n"
	"github.com/ashwinyue/prts/internal/kv"
	"github.com/ashwinyue/prts/internal/repository"
	"github.com/ashwinyue/prts/internal/service/chat"
	"github.com/ashwinyue/prts/internal/service/llm"
	"github.com/ashwinyue/prts/internal/service/meter"
	"github.com/ashwinyue/prts/internal/service/operator"
	"github.com/ashwinyue/prts/internal/service/preference"
	"github.com/ashwinyue/prts/internal/service/session"
	"github.com/ashwinyue/prts/internal/service/speech"
)

// Services 服务集合
type Services struct {
	Config *config.Config
	KV     kv.Store

	Sessions    *session.Store
	Meter       *meter.Meter
	Operators   *operator.Directory
	Roster      *operator.Roster
	Preferences *preference.Service
	Models      *llm.Factory
	Chat        *chat.Service
	Speech      *speech.Service
}

// NewServices 创建所有服务
// repos 仅在使用数据库存储时非 nil
func NewServices(ctx context.Context, cfg *config.Config, store kv.Store, repos *repository.Repositories) (*Services, error) {
	prefs := preference.NewService(ctx, store, preference.Defaults{
		Language: cfg.App.Language,
		APIKey:   cfg.AI.Gemini.APIKey,
	})

	var persister operator.Persister = operator.NewKVPersister(store)
	if cfg.Storage.OperatorBackend == "database" && repos != nil {
		persister = operator.NewRepositoryPersister(repos.Operator)
		log.Printf("Operators stored in database table")
	}
	operators := operator.NewDirectory(ctx, persister)
	roster := operator.NewRoster(ctx, store)

	sessions := session.NewStore(ctx, store, &session.Options{
		DefaultTitle: func() string { return prefs.T(i18n.DefaultSessionTitle) },
	})
	log.Printf("Loaded %d sessions, %d operators", sessions.Len(), len(operators.List()))

	models := llm.NewFactory(cfg.AI)

	return &Services{
		Config: cfg,
		KV:     store,

		Sessions:    sessions,
		Meter:       meter.New(cfg.Context.Ceiling, cfg.Context.WarnRatio),
		Operators:   operators,
		Roster:      roster,
		Preferences: prefs,
		Models:      models,
		Chat: chat.NewService(sessions, operators, roster, models, prefs, &chat.Options{
			UserName:      cfg.Session.UserName,
			SummaryWindow: cfg.Session.SummaryWindow,
		}),
		Speech: speech.NewService(cfg.Speech, prefs, models),
	}, nil
}
