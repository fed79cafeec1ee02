package main

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

func databaseFromEnv() (pool *pgxpool.Pool, err error) {
	connStr := os.Getenv("LIVELIST_DB")
	if connStr == "" {
		err = errors.New("empty or unset LIVELIST_DB")
		return
	}

	pool, err = pgxpool.New(context.Background(), connStr)
	return
}
