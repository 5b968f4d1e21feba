package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bcomnes/pgdbhelper"
)

// lifecycle is the set of database actions the command can run.
// *pgdbhelper.Operations implements it.
type lifecycle interface {
	Create(ctx context.Context) (pgdbhelper.Result, error)
	Drop(ctx context.Context) (pgdbhelper.Result, error)
	Migrate(ctx context.Context)
	Seed(ctx context.Context, seedFile string)
}

// request is the set of actions asked for on the command line.
type request struct {
	Create   bool
	Drop     bool
	Migrate  bool
	Seed     bool
	SeedFile string
}

// errShowHelp means no action flag was given.
var errShowHelp = errors.New("no action requested")

// errSeedRequired uses cobra's required-flag wording. --seed is required
// unless --drop is given.
var errSeedRequired = errors.New(`required flag(s) "seed" not set`)

// exitCode carries a non-zero exit status out of cobra.
type exitCode int

func (c exitCode) Error() string {
	return fmt.Sprintf("exit status %d", int(c))
}

// dispatch runs the requested actions in the order drop, create, migrate,
// seed and returns the process exit status. A failed Create or Drop stops
// the run; Migrate and Seed end the process themselves on failure.
func dispatch(ctx context.Context, ops lifecycle, dbName string, req request, stdout, stderr io.Writer) int {
	if req.Drop {
		if _, err := ops.Drop(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "Database %s dropped.\n", dbName)
	}

	if req.Create {
		if _, err := ops.Create(ctx); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintf(stdout, "Database %s created.\n", dbName)
	}

	if req.Migrate {
		ops.Migrate(ctx)
		fmt.Fprintf(stdout, "Database %s migrated.\n", dbName)
	}

	if req.Seed {
		ops.Seed(ctx, req.SeedFile)
		fmt.Fprintf(stdout, "Database %s seeded.\n", dbName)
	}

	return 0
}

// newRootCmd builds the pgdbhelper command.
//
// The flag rules are: create and drop conflict, migrate and drop conflict,
// seed conflicts with drop and is required unless drop is given. So --drop
// runs on its own, while --create and --migrate need a --seed.
func newRootCmd(ops lifecycle, dbName string, stdout, stderr io.Writer) *cobra.Command {
	var req request

	cmd := &cobra.Command{
		Use:           "pgdbhelper",
		Short:         "A utility for creating, migrating, seeding and dropping your postgres DB",
		Version:       pgdbhelper.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		// Runs before cobra validates flag groups.
		PreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.NFlag() == 0 {
				return errShowHelp
			}
			if !flags.Changed("seed") && !flags.Changed("drop") {
				return errSeedRequired
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Seed = cmd.Flags().Changed("seed")
			if code := dispatch(cmd.Context(), ops, dbName, req, stdout, stderr); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.BoolVarP(&req.Create, "create", "c", false, "Create the database")
	flags.BoolVarP(&req.Drop, "drop", "d", false, "Drop the database")
	flags.BoolVarP(&req.Migrate, "migrate", "m", false, "Migrate the database")
	flags.StringVarP(&req.SeedFile, "seed", "s", "", "Insert seed data from the specified SQL file")

	cmd.MarkFlagsMutuallyExclusive("create", "drop")
	cmd.MarkFlagsMutuallyExclusive("migrate", "drop")
	cmd.MarkFlagsMutuallyExclusive("seed", "drop")

	return cmd
}

// execute runs cmd with args and maps the outcome to an exit status.
func execute(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args on nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	var code exitCode
	switch {
	case err == nil:
		return 0
	case errors.As(err, &code):
		return int(code)
	case errors.Is(err, errShowHelp):
		cmd.SetOut(stderr)
		_ = cmd.Help()
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprint(stderr, cmd.UsageString())
		return 1
	}
}
