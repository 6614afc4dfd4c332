package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/akhilmk-dev/menahub/internal/config"
	"github.com/akhilmk-dev/menahub/internal/logger"
	"github.com/akhilmk-dev/menahub/internal/repository/postgres"
)

// Usage: go run ./cmd/migrate [-path migrations] up|down|version
func main() {
	dbCfg := config.LoadDatabase()
	path := flag.String("path", dbCfg.MigrationsPath, "directory holding the migration files")
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	log := logger.New(os.Getenv("ENVIRONMENT"), os.Getenv("LOG_LEVEL"))
	defer log.Sync()

	migrator, err := postgres.NewMigrator(dbCfg, *path, log)
	if err != nil {
		log.Fatal("Failed to open migrations", zap.Error(err))
	}
	defer migrator.Close()

	switch command {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = migrator.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q (want up, down or version)\n", command)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}
