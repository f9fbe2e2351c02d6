package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"catalogscraper/pkg/checkpoint"
	"catalogscraper/pkg/logger"
	"catalogscraper/pkg/ui"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the latest crawl",
	Long: `Show the run state recorded by the latest 'scrape': the last persisted page,
record totals and why the walk stopped.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVarP(&output, "output", "o", "", "snapshot path (default imdb.json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	flags := globalFlags()
	if cmd.Flags().Changed("output") {
		flags["output"] = output
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	mgr := checkpoint.NewManager(runStatePath(cfg), logger.GetLogger())
	info, err := mgr.GetCheckpointInfo()
	if err != nil {
		return err
	}
	if info == nil {
		ui.PrintWarning("No run state found at " + mgr.Path())
		return nil
	}

	state := "running or interrupted"
	if finished, _ := info["finished"].(bool); finished {
		state = fmt.Sprintf("finished (%v)", info["stop_reason"])
	}

	ui.PrintInfo("Source", fmt.Sprint(info["source"]))
	ui.PrintInfo("Store", fmt.Sprint(info["store"]))
	ui.PrintInfo("State", state)
	ui.PrintInfo("Last page", fmt.Sprint(info["last_page"]))
	ui.PrintInfo("Pages visited", fmt.Sprint(info["pages_visited"]))
	ui.PrintInfo("Records added", fmt.Sprint(info["records_added"]))
	ui.PrintInfo("Without details", fmt.Sprint(info["enrich_failures"]))
	ui.PrintInfo("Total records", fmt.Sprint(info["total_records"]))
	if age, ok := info["age"].(time.Duration); ok {
		ui.PrintInfo("Updated", age.Round(time.Second).String()+" ago")
	}
	return nil
}
