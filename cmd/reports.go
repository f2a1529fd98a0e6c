package main

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/report"
)

var (
	keepLast      int
	olderThanDays int
	forceClean    bool
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Manage saved capability reports",
	Long: `Manage capability reports written by "clut info --save". Reports live in
the report directory of the configuration.`,
}

var listReportsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved reports",
	Args:  cobra.NoArgs,
	RunE:  runListReports,
}

var showReportCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved report",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowReport,
}

var deleteReportCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Delete saved reports",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDeleteReports,
}

var cleanReportsCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old reports",
	Long: `Delete reports based on a retention policy: keep only the newest N
reports, or delete reports older than N days, or both.`,
	Args: cobra.NoArgs,
	RunE: runCleanReports,
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(listReportsCmd, showReportCmd, deleteReportCmd, cleanReportsCmd)

	cleanReportsCmd.Flags().IntVar(&keepLast, "keep-last", 0, "Keep only the newest N reports (0 = keep all)")
	cleanReportsCmd.Flags().IntVar(&olderThanDays, "older-than", 0, "Delete reports older than N days (0 = no age limit)")
	cleanReportsCmd.Flags().BoolVarP(&forceClean, "force", "f", false, "Skip confirmation prompt")
}

func openStore() (*report.FSStore, error) {
	st, err := report.NewFSStore(cfg.ReportDir, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open report store")
	}
	return st, nil
}

func runListReports(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	infos, err := st.List()
	if err != nil {
		return errors.Wrap(err, "failed to list reports")
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "No reports found.")
		return nil
	}
	writeReportTable(out, infos)
	fmt.Fprintf(out, "\nTotal reports: %d\n", len(infos))
	return nil
}

func writeReportTable(out io.Writer, infos []report.Info) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCREATED\tPLATFORMS\tDEVICES")
	fmt.Fprintln(w, "----\t-------\t---------\t-------")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n",
			displayName(info.Name),
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			info.Platforms,
			info.Devices,
		)
	}
	w.Flush()
}

func displayName(name string) string {
	if len(name) > 24 {
		return name[:24] + "..."
	}
	return name
}

func runShowReport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	r, err := st.Load(args[0])
	if err != nil {
		return err
	}
	writeReport(cmd.OutOrStdout(), r)
	return nil
}

func writeReport(out io.Writer, r *report.Report) {
	fmt.Fprintf(out, "Report %s, created %s.\n", r.Name, r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	for i, p := range r.Platforms {
		heading.Fprintf(out, "Platform #%d: %s\n", i+1, p.Name)
		for _, e := range p.Infos {
			fmt.Fprintf(out, "\t%-32s %s\n", e.Name, e.Value)
		}
		for j, d := range p.Devices {
			heading.Fprintf(out, "Device #%d: %s\n", j+1, d.Name)
			for _, e := range d.Infos {
				fmt.Fprintf(out, "\t%-32s %s\n", e.Name, e.Value)
			}
		}
	}
}

func runDeleteReports(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, name := range args {
		if err := st.Delete(name); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted report %s.\n", name)
	}
	return nil
}

func runCleanReports(cmd *cobra.Command, args []string) error {
	if keepLast == 0 && olderThanDays == 0 {
		return errors.New("must specify either --keep-last or --older-than")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	infos, err := st.List()
	if err != nil {
		return errors.Wrap(err, "failed to list reports")
	}

	out := cmd.OutOrStdout()
	toDelete := selectReportsForDeletion(infos, keepLast, olderThanDays, time.Now())
	if len(toDelete) == 0 {
		fmt.Fprintln(out, "No reports match deletion criteria.")
		return nil
	}

	fmt.Fprintf(out, "Found %d report(s) to delete:\n", len(toDelete))
	for _, info := range toDelete {
		fmt.Fprintf(out, "  - %s (%s)\n", displayName(info.Name), info.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	if !forceClean && !confirm(cmd.InOrStdin(), out, "\nProceed with deletion? [y/N]: ") {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	deleted, failed := 0, 0
	for _, info := range toDelete {
		if err := st.Delete(info.Name); err != nil {
			logger.Error("failed to delete report", zap.String("name", info.Name), zap.Error(err))
			failed++
			continue
		}
		logger.Info("deleted report", zap.String("name", info.Name))
		deleted++
	}

	summary := color.New(color.FgGreen)
	if failed > 0 {
		summary = color.New(color.FgYellow)
	}
	summary.Fprintf(out, "\nDeleted %d report(s), %d failed.\n", deleted, failed)
	return nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y"
}

// selectReportsForDeletion applies the retention policy. A report matching
// both rules is returned once. The result is ordered oldest first.
func selectReportsForDeletion(infos []report.Info, keepLast, olderThanDays int, now time.Time) []report.Info {
	sorted := make([]report.Info, len(infos))
	copy(sorted, infos)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	selected := make(map[string]bool)
	if olderThanDays > 0 {
		cutoff := now.AddDate(0, 0, -olderThanDays)
		for _, info := range sorted {
			if info.CreatedAt.Before(cutoff) {
				selected[info.Name] = true
			}
		}
	}
	if keepLast > 0 && len(sorted) > keepLast {
		for _, info := range sorted[:len(sorted)-keepLast] {
			selected[info.Name] = true
		}
	}

	var toDelete []report.Info
	for _, info := range sorted {
		if selected[info.Name] {
			toDelete = append(toDelete, info)
		}
	}
	return toDelete
}
