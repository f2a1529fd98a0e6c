package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/clut/internal/cl"
	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/query"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "Print the supported image format matrix of every device",
	Args:  cobra.NoArgs,
	RunE:  runFormats,
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	api, err := openAPI()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	d := describe.New(api, logger, out)

	platforms, err := query.Platforms(api)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Total number of platforms: %d.\n", len(platforms))
	var failed int
	for i, p := range platforms {
		heading.Fprintf(out, "Printing supported image formats for platform #%d:\n", i+1)

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
			heading.Fprintf(out, "Printing supported image formats for device #%d:\n", j+1)
			if err := d.PrintSupportedImageFormats(dev); err != nil {
				logger.Error("unable to print image formats", zap.Int("device", j+1), zap.Error(err))
				failed++
			}
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return errors.Errorf("%d device(s) could not be inspected", failed)
	}
	return nil
}
