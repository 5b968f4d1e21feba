// Command newmigration adds an empty do/undo pair to the embedded migration
// bundle. Run it from the module root:
//
//	go run ./cmd/newmigration "add users table"
//	go run ./cmd/newmigration --timestamp "add users table"
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bcomnes/pgdbhelper/pkg/migrator"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newCmd(stdout io.Writer) *cobra.Command {
	var (
		dir       string
		timestamp bool
	)
	cmd := &cobra.Command{
		Use:           "newmigration <description>",
		Short:         "Create a new pair of migration files in the bundle",
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			doPath, undoPath, err := migrator.Scaffold(dir, strings.Join(args, " "), timestamp)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Created %s\nCreated %s\n", doPath, undoPath)
			return nil
		},
	}
	cmd.SetOut(stdout)
	cmd.Flags().StringVar(&dir, "dir", "migrations", "Directory holding the migration bundle")
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "Number the migration with the Unix time instead of the next integer")
	return cmd
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newCmd(stdout)
	cmd.SetErr(stderr)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error creating new migration: %v\n", err)
		return 1
	}
	return 0
}
