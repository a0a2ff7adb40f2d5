package app

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/chakravarthigit/prompt-frontend/internal/api"
	"github.com/chakravarthigit/prompt-frontend/internal/config"
	"github.com/chakravarthigit/prompt-frontend/internal/connectivity"
	"github.com/chakravarthigit/prompt-frontend/internal/logger"
	"github.com/chakravarthigit/prompt-frontend/internal/redis"
	"github.com/chakravarthigit/prompt-frontend/internal/session"
)

// Expiry applied uniformly on login fan-out, backfills and profile
// updates.
const sessionTTL = 30 * 24 * time.Hour

type Infra struct {
	Bus      evbus.Bus
	Sessions *session.Reconciler
	Monitor  *connectivity.Monitor
	API      *api.Client

	redisClient *redis.Client
}

func setupInfra(_ context.Context, cfg config.Config) (*Infra, error) {
	origin, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	// One jar serves both as the primary session tier and as the API
	// client's cookie storage, so backend HTTP-only cookies and the
	// mirrored token travel together.
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	bus := evbus.New()

	cookieStore := session.NewJarStore(jar, origin)
	memoryStore := session.NewMemoryStore()

	deps := session.Dependencies{}
	var redisClient *redis.Client
	if cfg.SessionStoreDriver == session.DriverRedis {
		redisClient, err = redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		deps.Redis = redisClient.Client
		logger.Info("redis session tier ready", nil)
	}

	localStore, err := session.NewPersistent(session.PersistentConfig{
		Driver:   cfg.SessionStoreDriver,
		FilePath: cfg.SessionFilePath,
	}, deps)
	if err != nil {
		return nil, err
	}

	sessions := session.NewReconciler(cookieStore, memoryStore, localStore, sessionTTL)
	monitor := connectivity.NewMonitor(cfg.ProbeURL, cfg.ProbeInterval, bus)
	client := api.New(cfg.APIBaseURL, jar, bus)

	return &Infra{
		Bus:         bus,
		Sessions:    sessions,
		Monitor:     monitor,
		API:         client,
		redisClient: redisClient,
	}, nil
}

func (i *Infra) close() error {
	i.Monitor.Stop()
	if i.redisClient != nil {
		return i.redisClient.Close()
	}
	return nil
}
