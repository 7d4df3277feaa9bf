// Command cmd applies the database schema and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joy095/venue/config"
	"github.com/joy095/venue/config/db"
	"github.com/joy095/venue/logger"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	db.Connect()
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.Migrate(ctx, db.DB); err != nil {
		logger.ErrorLogger.Errorf("Migration failed: %v", err)
		fmt.Fprintln(os.Stderr, "migration failed:", err)
		cancel()
		db.Close()
		os.Exit(1)
	}

	fmt.Println("Schema applied successfully")
}
