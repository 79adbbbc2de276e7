//go:build integration

// Package integration spins up real Postgres and Kafka containers for
// end-to-end repository and relay tests. Run with -tags integration.
package integration

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type Env struct {
	PG      *postgres.PostgresContainer
	Kafka   *kafka.KafkaContainer
	Pool    *pgxpool.Pool
	PGURL   string
	Brokers []string
	cancel  context.CancelFunc
}

func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)

	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("roastery"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		return nil, err
	}

	// simple protocol so the multi-statement migration file applies in one Exec
	cfg, err := pgxpool.ParseConfig(pgURL)
	if err != nil {
		cancel()
		return nil, err
	}
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	if err := migrate(ctx, pool); err != nil {
		cancel()
		return nil, err
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("roastery-test"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	return &Env{
		PG:      pgC,
		Kafka:   kafkaC,
		Pool:    pool,
		PGURL:   pgURL,
		Brokers: brokers,
		cancel:  cancel,
	}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema, err := os.ReadFile("../../migrations/001_init.sql")
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, string(schema))
	return err
}

func (e *Env) Teardown(ctx context.Context) {
	e.Pool.Close()
	e.cancel()
	_ = e.Kafka.Terminate(ctx)
	_ = e.PG.Terminate(ctx)
}
