package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/diarkit/clips"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/errors"
)

func newClipsCmd(root *rootOptions) *cobra.Command {
	var (
		reportPath string
		outputDir  string
		cut        bool
	)
	cmd := &cobra.Command{
		Use:   "clips <audio>",
		Short: "Extract listening samples for labeling speakers",
		Long: "Without --report, writes a short sample at a fixed interval through the recording.\n" +
			"With --report, writes one sample per speaker from that speaker's longest segment.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, _, err := loadApp(cmd.Context(), root, func(cfg *AppConfig) {
				if outputDir != "" {
					cfg.Clips.OutputDir = outputDir
				}
			})
			if err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				cfg := app.Cfg.Clips
				if cmd.Flags().Changed("cut") {
					cfg.Cut = cut
				}
				extractor := clips.New(cfg)

				var written []clips.Clip
				if reportPath != "" {
					report, err := diarization.LoadReport(reportPath)
					if err != nil {
						return errors.InvalidInput("report", err.Error())
					}
					written, err = extractor.Speakers(ctx, args[0], report)
					if err != nil {
						return err
					}
				} else {
					written, err = extractor.Samples(ctx, args[0])
					if err != nil {
						return err
					}
				}

				out := cmd.OutOrStdout()
				for _, c := range written {
					label := c.Speaker
					if label == "" {
						label = fmt.Sprintf("%d:%02d", int(c.Start)/60, int(c.Start)%60)
					}
					fmt.Fprintf(out, "%s\t%s\n", label, c.Path)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&reportPath, "report", "", "JSON or YAML report from diarize run")
	f.StringVarP(&outputDir, "out", "o", "", "output directory")
	f.BoolVar(&cut, "cut", false, "cut clips from the source with ffmpeg, keeping its rate and channels")
	return cmd
}
