// Command pgdbhelper creates, drops, migrates and seeds the PostgreSQL
// database described by DB_HOST, DB_NAME, DB_USER and DB_PASSWORD.
//
//	pgdbhelper --create --migrate --seed seed.sql
//
// A .env file in the working directory is loaded first; variables already
// set in the environment win. Logging is controlled by
// PGDBHELPER_LOG_LEVEL (debug, info, warn, error) and PGDBHELPER_LOG_FILE.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/bcomnes/pgdbhelper"
	"github.com/bcomnes/pgdbhelper/internal/logger"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// A missing .env file is fine; a malformed one is logged below.
	dotenvErr := godotenv.Load()

	env := pgdbhelper.NewEnv()
	logger.Init(logger.ParseLevel(env.GetString("log_level")), env.GetString("log_file"))
	defer logger.Close()

	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		logger.Warn("Ignoring .env file", "error", dotenvErr)
	}

	// Configuration problems are reported on stdout like the confirmations.
	cfg, err := pgdbhelper.LoadConfig(env)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}
	logger.Debug("Loaded configuration", "host", cfg.Host, "database", cfg.Name, "user", cfg.Username)

	ops := pgdbhelper.NewOperations(cfg)
	ops.Stderr = stderr
	return execute(ctx, newRootCmd(ops, cfg.Name, stdout, stderr), args, stderr)
}
