package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/locnguyen/uel-calendar-sync/internal/cli"
	"github.com/locnguyen/uel-calendar-sync/internal/logger"
)

func main() {
	// Optional .env for local development; missing file is fine.
	_ = godotenv.Load()

	if os.Getenv("UEL_SYNC_DEBUG") == "1" {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	} else {
		logger.SetDefault(logger.New(logger.LevelInfo, os.Stderr))
	}

	cli.Execute()
}
