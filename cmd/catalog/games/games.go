package games

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robalobadob/minigames/internal/catalog"
)

var Group = &cobra.Group{
	ID:    "games",
	Title: "Game definitions",
}

func init() {
	Seed.Flags().String("db", os.Getenv("CATALOG_DB"), "path to the SQLite database")
	List.Flags().String("db", "", "list from this SQLite database instead of the embedded catalogue")
}

var Validate = &cobra.Command{
	Use:     "validate [files...]",
	GroupID: "games",
	Short:   "Validate game definitions",
	Long:    `Parses and validates YAML game definitions. Without arguments, validates the embedded catalogue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			c, err := catalog.Embedded()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "embedded catalogue ok: %d games\n", c.Len())
			return nil
		}
		failed := 0
		for _, name := range args {
			data, err := os.ReadFile(name)
			if err == nil {
				_, err = catalog.Parse(data)
			}
			if err != nil {
				failed++
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", name, err)
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d definitions invalid", failed, len(args))
		}
		return nil
	},
}

var List = &cobra.Command{
	Use:     "list",
	GroupID: "games",
	Short:   "List games",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		path, err := cmd.Flags().GetString("db")
		if err != nil {
			return err
		}

		var src catalog.Source
		if path == "" {
			if src, err = catalog.Embedded(); err != nil {
				return err
			}
		} else {
			db, err := catalog.OpenDB(ctx, path)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := catalog.Migrate(ctx, db); err != nil {
				return err
			}
			src = catalog.NewRepository(db)
		}

		list, err := src.List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "SLUG\tKIND\tTITLE")
		for _, s := range list {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Slug, s.Kind, s.Title)
		}
		return tw.Flush()
	},
}

var Seed = &cobra.Command{
	Use:     "seed",
	GroupID: "games",
	Short:   "Write the embedded catalogue to SQLite",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		path, err := cmd.Flags().GetString("db")
		if err != nil {
			return err
		}
		if path == "" {
			return errors.New("--db or CATALOG_DB is required")
		}

		c, err := catalog.Embedded()
		if err != nil {
			return err
		}
		db, err := catalog.OpenDB(ctx, path)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := catalog.Migrate(ctx, db); err != nil {
			return err
		}
		n, err := catalog.NewRepository(db).Seed(ctx, c.Definitions())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d games into %s\n", n, path)
		return nil
	},
}
