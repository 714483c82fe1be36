package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vitalsum/vitalsum/internal/sources"
	"github.com/vitalsum/vitalsum/pkg/errors"
	"github.com/vitalsum/vitalsum/pkg/hrv"
	"github.com/vitalsum/vitalsum/pkg/logging"
	"github.com/vitalsum/vitalsum/pkg/report"
	"github.com/vitalsum/vitalsum/pkg/steps"
)

var (
	noWrite    bool
	reportName string
	layoutFile string
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [dir]",
	Short: "Reconcile an export directory into a monthly summary",
	Long: `Summarize loads the step-count and HRV sources found in the export
directory, reconciles them month by month, prints the summary, and
writes it next to the source files.

With no directory argument the current directory is used. Missing or
unreadable sources degrade to empty sections; only an unreadable base
directory fails the command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().BoolVar(&noWrite, "no-write", false,
		"Print the summary without writing the report file")
	summarizeCmd.Flags().StringVar(&reportName, "report-name", "",
		"Report file name (default monthly_summary.txt)")
	summarizeCmd.Flags().StringVar(&layoutFile, "layout", "",
		"YAML file overriding the export naming patterns")

	if err := viper.BindPFlag("report_name", summarizeCmd.Flags().Lookup("report-name")); err != nil {
		panic(fmt.Sprintf("Failed to bind report-name flag: %v", err))
	}
	if err := viper.BindPFlag("layout_file", summarizeCmd.Flags().Lookup("layout")); err != nil {
		panic(fmt.Sprintf("Failed to bind layout flag: %v", err))
	}
}

func runSummarize(cmd *cobra.Command, args []string) error {
	base := "."
	if len(args) > 0 {
		base = args[0]
	} else {
		logging.Info().Str("dir", base).Msg("no path given, using current directory")
	}

	layout, err := resolveLayout()
	if err != nil {
		return err
	}

	export, err := sources.Discover(base, layout)
	if err != nil {
		return err
	}

	// The two reconcilers share no state and read independent files,
	// so they run concurrently.
	var (
		wg        sync.WaitGroup
		estimates []steps.MonthlyEstimate
		summaries []hrv.MonthlySummary
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		estimates = steps.New().Reconcile(export.StepSources())
	}()
	go func() {
		defer wg.Done()
		idx := hrv.BuildIndex(export.HistogramDir)
		entries := hrv.New().Link(export.HRVIndexTable(), idx)
		summaries = hrv.Monthly(hrv.Dedupe(entries))
	}()
	wg.Wait()

	text := report.Render(estimates, summaries)
	fmt.Fprint(cmd.OutOrStdout(), text)

	if noWrite {
		return nil
	}

	name := viper.GetString("report_name")
	if name == "" {
		name = "monthly_summary.txt"
	}
	target := filepath.Join(base, name)
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return errors.WrapIO("write", target, err)
	}
	logging.Info().Str("path", target).Msg("wrote summary")
	return nil
}

// resolveLayout loads the layout override when one is configured.
func resolveLayout() (sources.Layout, error) {
	path := viper.GetString("layout_file")
	if path == "" {
		return sources.DefaultLayout(), nil
	}
	return sources.LoadLayout(path)
}
