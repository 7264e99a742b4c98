// Package app assembles the store backend and services from config. The
// server and the CLI share it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelcm/cowork-dashboard/internal/calendar"
	"github.com/angelcm/cowork-dashboard/internal/config"
	"github.com/angelcm/cowork-dashboard/internal/content"
	"github.com/angelcm/cowork-dashboard/internal/export"
	"github.com/angelcm/cowork-dashboard/internal/funnel"
	"github.com/angelcm/cowork-dashboard/internal/httpx"
	"github.com/angelcm/cowork-dashboard/internal/metrics"
	"github.com/angelcm/cowork-dashboard/internal/models"
	"github.com/angelcm/cowork-dashboard/internal/scheduler"
	"github.com/angelcm/cowork-dashboard/internal/store"
	"github.com/angelcm/cowork-dashboard/internal/utils"
)

const pingTimeout = 5 * time.Second

type App struct {
	Store     store.Backend
	Content   *content.Service
	Calendar  *calendar.Service
	Scheduler *scheduler.Scheduler
	Funnels   *funnel.Service
	Exporter  *export.Exporter
	Metrics   *metrics.Recorder

	closers []func() error
}

// New builds the app. now may be nil to use the wall clock.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, met *metrics.Recorder, now func() time.Time) (*App, error) {
	if now == nil {
		now = time.Now
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	a := &App{Metrics: met}
	a.Store, err = a.openBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	col := store.NewCollection[models.ContentItem](a.Store, store.Content)
	a.Content = content.NewService(col, log, content.WithClock(now), content.WithMetrics(met))
	a.Calendar = calendar.NewService(col, log,
		calendar.WithClock(now), calendar.WithMetrics(met),
		calendar.WithLocation(loc), calendar.WithSlotHour(cfg.Schedule.SlotHour))
	a.Scheduler = scheduler.New(col, a.Calendar, log,
		scheduler.WithClock(now), scheduler.WithMetrics(met), scheduler.WithMaxPerDay(cfg.Schedule.MaxPerDay))
	a.Funnels = funnel.NewService(col)
	a.Exporter = export.NewExporter(export.NewHTTPClient(cfg.HTTPTimeout), a.Calendar, log,
		export.Config{SinkURL: cfg.SinkURL, SinkSecret: cfg.SinkSecret})
	return a, nil
}

func (a *App) openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Backend, error) {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := utils.NewBackoff(250*time.Millisecond, 3).Do(ctx, func(i int) error {
			pctx, cancel := context.WithTimeout(ctx, pingTimeout)
			defer cancel()
			if err := client.Ping(pctx).Err(); err != nil {
				log.Warn("redis ping failed", slog.Int("attempt", i), slog.String("err", err.Error()))
				return err
			}
			return nil
		})
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return store.NewRedisStore(client, cfg.Redis.Prefix), nil
	default:
		return store.NewFileStore(cfg.DataDir)
	}
}

// Deps returns the HTTP router dependencies.
func (a *App) Deps(now func() time.Time) httpx.Deps {
	return httpx.Deps{
		Store:     a.Store,
		Content:   a.Content,
		Calendar:  a.Calendar,
		Scheduler: a.Scheduler,
		Funnels:   a.Funnels,
		Exporter:  a.Exporter,
		Metrics:   a.Metrics,
		Now:       now,
	}
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
