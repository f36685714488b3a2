// Package bot wires the task service and the dialogue machine into a
// Telegram application on top of the reusable core runtime.
package bot

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/taskbot/core/bootstrap"
	coretelegram "github.com/m3rciful/taskbot/core/telegram"
	"github.com/m3rciful/taskbot/core/telegram/middleware"
	"github.com/m3rciful/taskbot/core/telegram/router"
	appconfig "github.com/m3rciful/taskbot/internal/config"
	"github.com/m3rciful/taskbot/internal/dialog"
	"github.com/m3rciful/taskbot/internal/tasks"
)

// Services groups the application services built during bootstrap.
type Services struct {
	Tasks  *tasks.Service
	Dialog *dialog.Machine
}

// App is the assembled bot application.
type App struct {
	cfg      *appconfig.Config
	db       *sqlx.DB
	services *Services
}

// New runs the bootstrap pipeline (logger, database, migrations) and builds
// the application services on top of it.
func New(cfg *appconfig.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	provider := bootstrap.TypedServiceProviderFunc[*Services](provideServices)
	modules := bootstrap.Modules{
		Seeders:  []bootstrap.Seeder{bootstrap.SeederFunc(probeStorage)},
		Services: provider,
	}

	ctx := context.Background()
	for _, s := range modules.Seeders {
		if err := s.Seed(ctx, res.DB); err != nil {
			_ = res.DB.Close()
			return nil, err
		}
	}

	services, err := provider.ProvideTyped(ctx, cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	return &App{cfg: cfg, db: res.DB, services: services}, nil
}

// probeStorage confirms the migrated schema answers queries before any
// handler is wired.
func probeStorage(ctx context.Context, storage bootstrap.Storage) error {
	db, ok := storage.(*sqlx.DB)
	if !ok {
		return fmt.Errorf("bot: unexpected storage type %T", storage)
	}
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM tasks"); err != nil {
		return fmt.Errorf("bot: tasks table probe failed: %w", err)
	}
	return nil
}

func provideServices(_ context.Context, cfg interface{}, storage bootstrap.Storage) (*Services, error) {
	appCfg, ok := cfg.(*appconfig.Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", cfg)
	}
	db, ok := storage.(*sqlx.DB)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected storage type %T", storage)
	}

	repo := tasks.NewPostgresRepository(db, appCfg.Tasks.CaseSensitiveSearch)
	svc := tasks.NewService(repo, tasks.NewDateValidator(appCfg.Tasks.DateLayouts))
	machine := dialog.NewMachine(svc, dialog.Options{
		CollectAssignee: appCfg.Tasks.CollectAssignee,
	})

	return &Services{Tasks: svc, Dialog: machine}, nil
}

// TelegramRunOptions assembles the registry, middleware chain, and routes.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)

	fb := Fallbacks{}
	reg.SetTextFallback(fb.UnknownText())

	access := &middleware.AccessOptions{
		AllowedIDs: a.cfg.Access.AllowedIDs,
		DeniedText: textAccessDenied,
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fb.UnknownCallback(),
	}))
	routes = append(routes, router.TextRoutes(fsmAdapter{a.services.Dialog}, reg, router.TextOptions{
		UnknownText:     fb.UnknownText(),
		UnknownDocument: fb.UnknownDocument(),
	})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), access, nil),
		Routes:      routes,
		OnStop: func(context.Context, coretelegram.Runtime) error {
			return a.db.Close()
		},
	}, nil
}
