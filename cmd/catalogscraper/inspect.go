package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/storage"
	"catalogscraper/pkg/ui"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Query the stored snapshot",
	Long: `Print the number of stored records and, when a path is given, the result of
a gjson query over the snapshot.

The snapshot is the JSON array written by the json backend; for the sqlite
and postgres backends the same array is rebuilt from the stored rows.`,
	Example: `  # Count records
  catalogscraper inspect

  # Titles of all records
  catalogscraper inspect '#.title'

  # Records from 2021
  catalogscraper inspect '#(year=="2021")#.title'

  # Number of series
  catalogscraper inspect '#(type!="Movie")#|#'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&output, "output", "o", "", "snapshot path (default imdb.json)")
	inspectCmd.Flags().StringVar(&backend, "backend", "", "storage backend: json, sqlite or postgres")
	inspectCmd.Flags().StringVar(&dsn, "dsn", "", "Postgres connection string")
}

func runInspect(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if cmd.Flags().Changed("output") {
		flags["output"] = output
	}
	if cmd.Flags().Changed("backend") {
		flags["backend"] = backend
	}
	if cmd.Flags().Changed("dsn") {
		flags["dsn"] = dsn
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage, logger.GetLogger())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	data, err := storage.EncodeSnapshot(store.Load(ctx))
	if err != nil {
		return err
	}

	query := ""
	if len(args) == 1 {
		query = args[0]
	}
	return inspectSnapshot(ui.Output(), store.Location(), data, query)
}

// inspectSnapshot prints the record count of data and the result of query
func inspectSnapshot(w io.Writer, location string, data []byte, query string) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("snapshot %s is not valid JSON", location)
	}

	count := gjson.GetBytes(data, "#").Int()
	fmt.Fprintf(w, "%s: %s records\n", ui.Cyan(location), ui.Yellow(fmt.Sprint(count)))

	if query == "" {
		return nil
	}

	result := gjson.GetBytes(data, query)
	if !result.Exists() {
		return fmt.Errorf("no match for %q", query)
	}

	if result.IsArray() {
		for _, item := range result.Array() {
			fmt.Fprintln(w, renderResult(item))
		}
		return nil
	}
	fmt.Fprintln(w, renderResult(result))
	return nil
}

func renderResult(r gjson.Result) string {
	if r.Type == gjson.String {
		return r.String()
	}
	return r.Raw
}
