package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/cwbudde/clut/internal/describe"
	"github.com/cwbudde/clut/internal/imagebridge"
	"github.com/cwbudde/clut/internal/session"
)

var blankCopy bool

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Move images between files and devices",
}

var imageCopyCmd = &cobra.Command{
	Use:   "copy IN OUT",
	Short: "Upload an image to the device and write it back as PNG",
	Long: `Load IN into a read-only device image, create an empty image of the same
format and size, and write the loaded image to OUT as PNG. With --blank the
empty duplicate is written instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runImageCopy,
}

func init() {
	rootCmd.AddCommand(imageCmd)
	imageCmd.AddCommand(imageCopyCmd)
	imageCopyCmd.Flags().BoolVar(&blankCopy, "blank", false, "Write the empty duplicate instead of the loaded image")
}

func runImageCopy(cmd *cobra.Command, args []string) (err error) {
	api, err := openAPI()
	if err != nil {
		return err
	}
	sess, err := session.Open(api, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	b := imagebridge.New(api, logger, imagebridge.Normalized(cfg.NormalizedImages))
	src, width, height, err := b.Load(sess.Context, args[0])
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, b.Release(src)) }()

	dup, err := b.DuplicateEmpty(sess.Context, src)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, b.Release(dup)) }()

	target := src
	if blankCopy {
		target = dup
	}
	if err := b.Save(args[1], sess.Queue, target); err != nil {
		return err
	}

	_, _, format, err := b.Format(target)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d, %s, %s).\n", args[1], width, height,
		describe.ChannelOrderName(format.Order), describe.ChannelTypeName(format.Type))
	return nil
}
