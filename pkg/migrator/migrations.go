package migrator

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed migrations/*.sql
var migrations embed.FS

// RegisterCoreMigrations adds the initial migration target that creates
// the livelist schema. It has to run before any other target.
func RegisterCoreMigrations(mig *Migrator) (err error) {
	dir, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return
	}

	mig.Targets.Register(MigrationTarget{
		Name:      "livelist",
		Directory: dir,
	})
	return
}

// RegisterMigrationsFromEnv adds an application migration target read
// from the directory named by LIVELIST_MIGRATIONS, when set.
func RegisterMigrationsFromEnv(mig *Migrator) (err error) {
	dir := os.Getenv("LIVELIST_MIGRATIONS")
	if dir == "" {
		return
	}

	mig.Targets.Register(MigrationTarget{
		Name:      "app",
		Directory: os.DirFS(dir),
	})
	return
}
