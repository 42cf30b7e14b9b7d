package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/pflag"
)

const (
	databaseFlag   = "database"
	migrationsFlag = "migrations"
	downFlag       = "down"
)

type migrateLogger struct {
	logger *slog.Logger
}

func (ml migrateLogger) Printf(format string, v ...any) {
	ml.logger.Info(fmt.Sprintf(format, v...))
}

func (ml migrateLogger) Verbose() bool { return true }

func main() {
	database := pflag.StringP(databaseFlag, "d", "", "database dsn, e.g. user:pass@host:5432/storefront")
	migrations := pflag.StringP(migrationsFlag, "m", "", "migrations directory")
	down := pflag.Bool(downFlag, false, "roll back the last migration")
	pflag.Parse()

	if err := validateFlags(*database, *migrations); err != nil {
		slog.Error("too few args", "err", err)
		os.Exit(2)
	}

	if err := run(*database, *migrations, *down); err != nil {
		slog.Error("failed to migrate", "err", err)
		os.Exit(2)
	}
}

func validateFlags(database, migrations string) error {
	var errs []error
	if database == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", databaseFlag))
	}
	if migrations == "" {
		errs = append(errs, fmt.Errorf("--%s flag: required", migrationsFlag))
	}
	return errors.Join(errs...)
}

func run(database, migrations string, down bool) error {
	m, err := migrate.New(
		fmt.Sprintf("file://%s", migrations),
		fmt.Sprintf("pgx5://%s", database),
	)
	if err != nil {
		return err
	}

	log := migrateLogger{slog.Default()}
	m.Log = log

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Printf("no migrations to apply")
			return nil
		}
		return err
	}

	log.Printf("migration applied")
	return nil
}
