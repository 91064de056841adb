// Package storage opens the event store selected by the configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
	"github.com/trezcool/agenda/storage/database"
	dummydb "github.com/trezcool/agenda/storage/database/dummy"
	sqlxrepos "github.com/trezcool/agenda/storage/database/sqlx"
	mongorepos "github.com/trezcool/agenda/storage/document/mongo"
)

const (
	Memory   = "memory"
	Postgres = "postgres"
	Mongo    = "mongo"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store is an opened event repository.
type Store struct {
	Backend string
	Repo    event.Repository

	close func(ctx context.Context) error
}

// Close releases the connections of the store.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// Open connects to the configured backend. Postgres is created and migrated up on the way.
func Open(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Storage.Backend {
	case Memory, "":
		db, err := dummydb.Open()
		if err != nil {
			return nil, errors.Wrap(err, "opening in-memory store")
		}
		return &Store{Backend: Memory, Repo: dummydb.NewEventRepository(db, conf)}, nil

	case Postgres:
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := database.Connect(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{
			Backend: Postgres,
			Repo:    sqlxrepos.NewEventRepository(db, conf),
			close:   func(context.Context) error { return db.Close() },
		}, nil

	case Mongo:
		client, err := mongorepos.Connect(ctx, conf)
		if err != nil {
			return nil, err
		}
		mdb := client.Database(conf.Mongo.Database)
		if err = mongorepos.EnsureIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &Store{
			Backend: Mongo,
			Repo:    mongorepos.NewEventRepository(mdb, conf),
			close:   client.Disconnect,
		}, nil
	}
	return nil, errors.Wrap(ErrUnknownBackend, fmt.Sprintf("%q", conf.Storage.Backend))
}
