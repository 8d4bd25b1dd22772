package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/diarkit/audio"
	"github.com/kbukum/diarkit/diarization"
	"github.com/kbukum/diarkit/errors"
	"github.com/kbukum/diarkit/logger"
	"github.com/kbukum/diarkit/provider"
	"github.com/kbukum/diarkit/webhook"
)

type runOptions struct {
	start, end   float64
	maxLines     int
	device       string
	backend      string
	minSpeakers  int
	maxSpeakers  int
	trustSource  bool
	jsonPath     string
	yamlPath     string
	transcript   string
	notify       bool
	quietSummary bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <audio>",
		Short: "Diarize an audio file and print the speaker timeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := windowFromFlags(cmd, opts)
			if err != nil {
				return err
			}

			app, tel, err := loadApp(cmd.Context(), root, func(cfg *AppConfig) {
				applyRunFlags(cmd, opts, &cfg.Diarization)
			})
			if err != nil {
				return err
			}

			return app.RunTask(cmd.Context(), func(ctx context.Context) error {
				cfg := app.Cfg
				runner, err := diarization.NewRunner(cfg.Diarization,
					diarization.WithMetrics(tel.Metrics),
					diarization.WithServiceName(app.Name),
				)
				if err != nil {
					return err
				}
				loader, err := createLoader(runner.Config())
				if err != nil {
					return err
				}

				report, err := runner.Process(ctx, args[0], window, loader)
				if err != nil {
					return err
				}

				if opts.transcript != "" {
					text, err := os.ReadFile(opts.transcript)
					if err != nil {
						return errors.InvalidInput("transcript", err.Error())
					}
					report.Segments = diarization.AssignTranscript(report.Segments, string(text))
				}

				if !opts.quietSummary {
					fmt.Fprint(cmd.OutOrStdout(), diarization.Summarize(report, opts.maxLines))
				}
				if err := exportReport(report, opts); err != nil {
					return err
				}
				if opts.notify {
					return notify(ctx, cfg.Webhook, args[0])
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.Float64Var(&opts.start, "start", 0, "window start in seconds (requires --end)")
	f.Float64Var(&opts.end, "end", 0, "window end in seconds; clamped to the audio duration")
	f.IntVar(&opts.maxLines, "max-lines", 50, "segments to print (0 prints all)")
	f.StringVar(&opts.device, "device", "", "compute device: cpu, cuda or mps")
	f.StringVar(&opts.backend, "backend", "", "diarization backend")
	f.IntVar(&opts.minSpeakers, "min-speakers", 0, "minimum number of speakers")
	f.IntVar(&opts.maxSpeakers, "max-speakers", 0, "maximum number of speakers")
	f.BoolVar(&opts.trustSource, "trust-source", false, "trust the model source when loading weights")
	f.StringVar(&opts.jsonPath, "json", "", "write the report as JSON to this path")
	f.StringVar(&opts.yamlPath, "yaml", "", "write the report as YAML to this path")
	f.StringVar(&opts.transcript, "transcript", "", "text file whose words are spread across segments")
	f.BoolVar(&opts.notify, "notify", false, "notify the configured webhook when done")
	f.BoolVarP(&opts.quietSummary, "quiet", "q", false, "do not print the summary")
	return cmd
}

// windowFromFlags returns the requested window, or nil when neither --start
// nor --end was given.
func windowFromFlags(cmd *cobra.Command, opts *runOptions) (*audio.Window, error) {
	startSet := cmd.Flags().Changed("start")
	endSet := cmd.Flags().Changed("end")
	if !startSet && !endSet {
		return nil, nil
	}
	if !endSet {
		return nil, errors.InvalidInput("end", "--start requires --end")
	}
	w := audio.Window{Start: opts.start, End: opts.end}
	if !w.Bounded() || w.Start < 0 || w.Start >= w.End {
		return nil, errors.InvalidInput("window", "window must satisfy 0 <= start < end, got "+w.String())
	}
	return &w, nil
}

func applyRunFlags(cmd *cobra.Command, opts *runOptions, cfg *diarization.Config) {
	f := cmd.Flags()
	if f.Changed("device") {
		cfg.Device = opts.device
	}
	if f.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if f.Changed("min-speakers") {
		cfg.MinSpeakers = opts.minSpeakers
	}
	if f.Changed("max-speakers") {
		cfg.MaxSpeakers = opts.maxSpeakers
	}
	if f.Changed("trust-source") {
		cfg.TrustSource = opts.trustSource
	}
}

func exportReport(report *diarization.Report, opts *runOptions) error {
	exports := []struct {
		path  string
		write func(io.Writer, *diarization.Report) error
	}{
		{opts.jsonPath, diarization.WriteJSON},
		{opts.yamlPath, diarization.WriteYAML},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := writeReportFile(e.path, report, e.write); err != nil {
			return errors.Internal(err)
		}
		logger.Get("cli").Info("report written", logger.Fields(logger.FieldPath, e.path))
	}
	return nil
}

func writeReportFile(path string, report *diarization.Report, write func(io.Writer, *diarization.Report) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f, report)
}

func notify(ctx context.Context, cfg webhook.Config, audioPath string) error {
	n, err := webhook.New(cfg)
	if err != nil {
		return err
	}
	sink := provider.WithSinkLogging[webhook.Notification](logger.Get("webhook"))(n)
	return sink.Send(ctx, webhook.NotificationFor(audioPath))
}
