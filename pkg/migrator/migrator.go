package migrator

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/pala-software/livelist/pkg/livelist"
)

type Migrator struct {
	Targets livelist.Registry[Migratable]
}

func MigratorFromEnv() *Migrator {
	return &Migrator{}
}

func (mig Migrator) Migrate(pool *pgxpool.Pool) (err error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return
	}
	defer conn.Release()

	for _, target := range mig.Targets.Value() {
		err = target.Migrate(conn, false)
		if err != nil {
			return
		}
	}

	return
}

func (mig *Migrator) Provider() any {
	return func() (self *Migrator) {
		self = mig
		return
	}
}

func (mig *Migrator) Invoker() any {
	return func() (err error) {
		err = RegisterCoreMigrations(mig)
		if err != nil {
			return
		}

		return
	}
}
