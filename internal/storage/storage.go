package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ArowuTest/luckyticket-backend/internal/config"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories"
	mongorepo "github.com/ArowuTest/luckyticket-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/luckyticket-backend/internal/repositories/sqlite"
	mongodb "github.com/ArowuTest/luckyticket-backend/pkg/mongodb"
)

// Backend bundles the repositories of the configured storage driver.
type Backend struct {
	Tickets repositories.TicketRepository
	Users   repositories.UserRepository
	Ping    func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// Close releases the underlying connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open connects to the backend selected by cfg.Storage.Driver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongoDB:
		return openMongo(ctx, cfg.MongoDB)
	case config.DriverSQLite:
		return openSQLite(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func openMongo(ctx context.Context, cfg config.MongoDBConfig) (*Backend, error) {
	client, err := mongodb.NewClient(ctx, cfg.URI, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Backend{
		Tickets: mongorepo.NewTicketRepository(db),
		Users:   mongorepo.NewUserRepository(db),
		Ping:    client.Ping,
		close:   client.Disconnect,
	}, nil
}

func openSQLite(cfg config.SQLiteConfig) (*Backend, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	store, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, err
	}
	return &Backend{
		Tickets: store.Tickets(),
		Users:   store.Users(),
		Ping:    store.Ping,
		close:   func(context.Context) error { return store.Close() },
	}, nil
}
