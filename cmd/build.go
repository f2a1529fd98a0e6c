package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/program"
	"github.com/cwbudde/clut/internal/session"
)

var (
	buildFlags   string
	showBuildLog bool
)

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Compile an OpenCL program source",
	Long: `Build the program in FILE for the preferred device (GPU, then CPU, then
any) with the default options plus optional extra flags. On failure the
build log of every device is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildFlags, "flags", "", "Extra compiler flags appended to the defaults")
	buildCmd.Flags().BoolVar(&showBuildLog, "show-log", false, "Print the build log after a successful build")
}

func runBuild(cmd *cobra.Command, args []string) (err error) {
	api, err := openAPI()
	if err != nil {
		return err
	}
	sess, err := session.Open(api, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	extra := cfg.ExtraBuildFlags
	if cmd.Flags().Changed("flags") {
		extra = &buildFlags
	}

	out := cmd.OutOrStdout()
	b := program.NewBuilder(api, logger, program.WithOutput(out))
	prog, err := b.Build(sess.Context, args[0], extra)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, b.Release(prog)) }()

	name, ok := describe.New(api, logger, out).DeviceName(sess.Device)
	if !ok {
		name = describe.NotAvailable
	}
	fmt.Fprintf(out, "Built %s for %s with options %q.\n", args[0], name, program.ComposeOptions(extra))

	if showBuildLog {
		return b.PrintBuildLog(prog)
	}
	return nil
}
