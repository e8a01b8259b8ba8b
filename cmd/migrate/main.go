package main

// Run audit migrations against DATABASE_URL or AUDIT_SQLITE_PATH:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"lawxpert-backend/internal/shared/config"
	"lawxpert-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	dialect, dsn, ok := db.Resolve(cfg.DatabaseURL, cfg.AuditSQLitePath)
	if !ok {
		log.Printf("neither DATABASE_URL nor AUDIT_SQLITE_PATH is set")
		os.Exit(1)
	}
	if err := migrate(context.Background(), dialect, dsn); err != nil {
		log.Printf("failed to run %s migrations: %v", dialect, err)
		os.Exit(1)
	}
	log.Printf("%s migrations applied", dialect)
}

func migrate(ctx context.Context, dialect db.Dialect, dsn string) error {
	sqlDB, err := db.Open(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return db.RunMigrations(ctx, sqlDB, dialect)
}
