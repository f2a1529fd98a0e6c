package main

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/query"
	"github.com/cwbudde/clut/internal/report"
)

var saveReport string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print every platform and device info",
	Long: `Enumerate all OpenCL platforms and their devices and print each known
attribute in human-readable form. With --save the rendered values are also
stored as a named report.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().StringVar(&saveReport, "save", "", "Store the rendered infos as a report with this name")
}

func runInfo(cmd *cobra.Command, args []string) error {
	api, err := openAPI()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	d := describe.New(api, logger, out)

	if err := printInfos(out, api, d); err != nil {
		return err
	}

	if saveReport == "" {
		return nil
	}
	r, err := report.Collect(api, d, saveReport, time.Now())
	if err != nil {
		return errors.Wrap(err, "collect report")
	}
	st, err := report.NewFSStore(cfg.ReportDir, logger)
	if err != nil {
		return err
	}
	if err := st.Save(saveReport, r); err != nil {
		return errors.Wrap(err, "save report")
	}
	fmt.Fprintf(out, "Saved report %q.\n", saveReport)
	return nil
}

func printInfos(out io.Writer, api cl.API, d *describe.Describer) error {
	platforms, err := query.Platforms(api)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Total number of platforms: %d.\n", len(platforms))
	for i, p := range platforms {
		heading.Fprintf(out, "Printing info for platform #%d:\n", i+1)
		d.PrintPlatformInfos(p)

		devices, err := query.Devices(api, p, cl.DeviceTypeAll)
		if errors.Is(err, query.ErrNoDevices) {
			logger.Info("platform has no devices", zap.Int("platform", i+1))
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "platform #%d", i+1)
		}

		fmt.Fprintf(out, "Platform #%d has %d devices.\n", i+1, len(devices))
		for j, dev := range devices {
			heading.Fprintf(out, "Printing info for device #%d:\n", j+1)
			d.PrintDeviceInfos(dev)
		}
		fmt.Fprintln(out)
	}
	return nil
}
