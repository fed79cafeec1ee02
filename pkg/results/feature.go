package results

import (
	"embed"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/pala-software/livelist/pkg/livelist"
	"gitlab.com/pala-software/livelist/pkg/migrator"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Watch struct{}

// Construct Watch Feature and read configuration from environment
// variables.
func WatchFromEnv() *Watch {
	feature := &Watch{}
	// No configuration at this time
	return feature
}

func (feature *Watch) Provider() any {
	return func(pool *pgxpool.Pool) (self *Watch, watcher *Watcher) {
		self = feature
		watcher = NewWatcher(pool)
		return
	}
}

func (feature *Watch) Invoker() any {
	return func(
		watcher *Watcher,
		lifecycle *livelist.Lifecycle,
		mig *migrator.Migrator,
	) (err error) {
		err = feature.RegisterMigrations(mig)
		if err != nil {
			return
		}

		lifecycle.Start.Register(func() error {
			watcher.Start()
			return nil
		})
		lifecycle.Shutdown.Register(watcher.Close)
		return
	}
}

func (Watch) RegisterMigrations(mig *migrator.Migrator) (err error) {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return
	}

	mig.Targets.Register(migrator.MigrationTarget{
		Name:      "watch",
		Directory: dir,
	})
	return
}
