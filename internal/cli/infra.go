package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"venuedash/internal/app/uow"
	"venuedash/internal/infra/config"
	mongodb "venuedash/internal/infra/db/mongo"
	"venuedash/internal/infra/obs"
	infraoutbox "venuedash/internal/infra/outbox"
	"venuedash/internal/infra/redisstore"
	"venuedash/internal/infra/storage/memory"
	"venuedash/internal/infra/venueapi"
)

// infrastructure holds the driver-specific collaborators and everything that
// must be closed on shutdown.
type infrastructure struct {
	deps        deps
	checks      map[string]obs.Check
	mongo       *mongodb.Client
	outboxStore *infraoutbox.Store
	closers     []func(context.Context) error
}

func (i *infrastructure) Close(ctx context.Context) error {
	var errs []error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	infra := &infrastructure{checks: map[string]obs.Check{}}
	d := deps{
		Notifier: obs.LogNotifier{Logger: logger},
		Logger:   logger,
	}

	var err error
	switch cfg.StorageDriver {
	case config.DriverMemory:
		d.UoWFactory, err = openMemory(ctx, cfg, logger)
		d.Outbox = memory.NewOutbox()
		d.Idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	case config.DriverMongo:
		err = infra.openMongo(ctx, cfg, &d)
	case config.DriverRemote:
		client := venueapi.NewClient(cfg.VenueAPIURL, cfg.VenueAPIToken, cfg.VenueAPITimeout, logger)
		d.UoWFactory = venueapi.Factory{Client: client}
		d.Outbox = memory.NewOutbox()
		d.Idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	default:
		err = fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		_ = infra.Close(ctx)
		return nil, err
	}

	if cfg.RedisEnabled() {
		client, err := redisstore.NewClient(ctx, redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			_ = infra.Close(ctx)
			return nil, fmt.Errorf("redis: %w", err)
		}
		infra.closers = append(infra.closers, func(context.Context) error { return client.Close() })
		infra.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		d.Locker = redisstore.NewLocker(client, cfg.CommitLockTTL)
		d.Sessions = redisstore.NewSessionStore(client, cfg.SessionTTL)
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	} else {
		d.Locker = memory.NewLocker()
		d.Sessions = memory.NewSessionStore(cfg.SessionTTL)
	}

	infra.deps = d
	logger.Info("storage ready", "driver", cfg.StorageDriver, "redis", cfg.RedisEnabled())
	return infra, nil
}

func openMemory(ctx context.Context, cfg config.Config, logger *slog.Logger) (uow.UoWFactory, error) {
	venues := memory.NewVenueRepository()
	bookings := memory.NewBookingRepository()
	if cfg.VenueFixtures != "" {
		fx, err := memory.LoadFixturesFile(cfg.VenueFixtures)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Info("venue fixtures file not found, skipping", "path", cfg.VenueFixtures)
		case err != nil:
			return nil, err
		default:
			if err := fx.Seed(ctx, venues, bookings); err != nil {
				return nil, err
			}
			logger.Info("venue fixtures imported", "path", cfg.VenueFixtures, "venues", len(fx.Venues), "bookings", len(fx.Bookings))
		}
	}
	return memory.Factory{VenuesRepo: venues, BookingsRepo: bookings}, nil
}

func (i *infrastructure) openMongo(ctx context.Context, cfg config.Config, d *deps) error {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("mongo: %w", err)
	}
	i.mongo = client
	i.closers = append(i.closers, client.Close)
	i.checks["mongo"] = client.Ping

	if err := client.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	d.UoWFactory = mongodb.Factory{
		DB:           client.DB,
		VenuesRepo:   mongodb.NewVenueRepository(client.DB),
		BookingsRepo: mongodb.NewBookingRepository(client.DB),
	}
	store, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return fmt.Errorf("outbox store: %w", err)
	}
	i.outboxStore = store
	d.Outbox = store
	idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
	if err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	d.Idempotency = idem
	return nil
}
