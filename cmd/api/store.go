package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pkordes/yelp-camp/internal/config"
	"github.com/pkordes/yelp-camp/internal/repo"
	"github.com/pkordes/yelp-camp/migrations"
)

// store bundles the repositories of the configured driver with the function
// that releases its connections.
type store struct {
	camps repo.CampgroundRepo
	users repo.UserRepo
	close func()
}

func openStore(ctx context.Context, cfg config.Config) (store, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg)
	default:
		return openPostgres(ctx, cfg)
	}
}

func openPostgres(ctx context.Context, cfg config.Config) (store, error) {
	if cfg.MigrateOnStart {
		if err := migrate(ctx, cfg.DatabaseURL); err != nil {
			return store{}, err
		}
	}

	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return store{}, fmt.Errorf("create pool: %w", err)
	}

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return store{}, fmt.Errorf("ping: %w", err)
	}

	return store{
		camps: repo.NewCampgroundRepo(pool),
		users: repo.NewUserRepo(pool),
		close: pool.Close,
	}, nil
}

// migrate applies every pending goose migration through a short-lived
// database/sql connection.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("migrate: create provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	for _, res := range results {
		log.Info().
			Int64("version", res.Source.Version).
			Dur("duration", res.Duration).
			Msg("migration applied")
	}
	return nil
}

func openMongo(ctx context.Context, cfg config.Config) (store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURL))
	if err != nil {
		return store{}, fmt.Errorf("connect: %w", err)
	}

	disconnect := func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}

	if err := client.Ping(ctx, nil); err != nil {
		disconnect()
		return store{}, fmt.Errorf("ping: %w", err)
	}

	database := client.Database(cfg.MongoDatabase)
	if err := repo.EnsureMongoIndexes(ctx, database); err != nil {
		disconnect()
		return store{}, err
	}

	return store{
		camps: repo.NewMongoCampgroundRepo(database),
		users: repo.NewMongoUserRepo(database),
		close: disconnect,
	}, nil
}
