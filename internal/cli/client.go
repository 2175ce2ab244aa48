package cli

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unilater/galeaz/internal/config"
	"github.com/unilater/galeaz/internal/gateway"
	"github.com/unilater/galeaz/internal/infra/memory"
	redissession "github.com/unilater/galeaz/internal/infra/redis"
	"github.com/unilater/galeaz/internal/nav"
	"github.com/unilater/galeaz/internal/session"
	"github.com/unilater/galeaz/internal/shell"
)

// clientEnv bundles the pieces every client command needs: the API gateway,
// the session store and the terminal shell. Sessions live in Redis when an
// address is configured, so they survive across invocations; the in-memory
// store only lasts one run.
type clientEnv struct {
	cfg   config.Config
	log   *zap.Logger
	gw    *gateway.Client
	store session.Store
	ui    shell.Shell
	bus   *nav.Bus

	closers []func()
}

func newClientEnv(configPath string) (*clientEnv, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	base := cfg.API.BaseURL
	if base == "" {
		base = "http://localhost:8080/api"
	}
	env := &clientEnv{
		cfg: cfg,
		log: log,
		gw:  gateway.New(base, config.Duration(cfg.API.Timeout, 15*time.Second), log),
		ui:  shell.NewTerminal(log),
		bus: nav.NewBus(),
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		env.store = redissession.NewSessionStore(client, config.Duration(cfg.Redis.TTL, 0))
		env.closers = append(env.closers, func() { _ = client.Close() })
	} else {
		env.store = memory.NewSessionStore()
	}
	env.closers = append(env.closers, func() { _ = log.Sync() })
	return env, nil
}

func (e *clientEnv) Close() {
	for _, fn := range e.closers {
		fn()
	}
}
