package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/export"
	"github.com/himanishpuri/EKGLab/pkg/logger"
)

type outputFiles struct {
	png string
	csv string
	wav string
}

func (o *outputFiles) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.png, "png", "", "Write the chart to this PNG file")
	cmd.Flags().StringVar(&o.csv, "csv", "", "Write the samples to this CSV file")
	cmd.Flags().StringVar(&o.wav, "wav", "", "Write the samples to this WAV file")
}

// write saves the analysis in every requested format.
func (o *outputFiles) write(a *app, svc ekglab.Service, an *ekglab.Analysis) error {
	log := logger.GetLogger()

	if o.png != "" {
		f, err := os.Create(o.png)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", o.png, err)
		}
		err = svc.RenderChart(f, an)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to render chart: %w", err)
		}
		log.Infof("Wrote chart to %s", o.png)
		fmt.Fprintf(a.out, "Chart:   %s\n", o.png)
	}

	if o.csv != "" {
		f, err := os.Create(o.csv)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", o.csv, err)
		}
		err = export.CSV(f, an.Samples)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		log.Infof("Wrote %d samples to %s", len(an.Samples), o.csv)
		fmt.Fprintf(a.out, "CSV:     %s\n", o.csv)
	}

	if o.wav != "" {
		st := an.Settings
		if err := export.WAVFile(o.wav, an.Samples, st.SamplingDuration(), export.FullScale(st.Viewport())); err != nil {
			return fmt.Errorf("failed to write WAV: %w", err)
		}
		log.Infof("Wrote %d samples to %s", len(an.Samples), o.wav)
		fmt.Fprintf(a.out, "WAV:     %s\n", o.wav)
	}
	return nil
}

func newGenerateCmd(a *app) *cobra.Command {
	var files outputFiles

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Synthesize a waveform from the stored settings and classify it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := commandContext(cmd, time.Minute)
			defer cancel()

			an, err := svc.Generate(ctx)
			if err != nil {
				return err
			}
			if err := writeAnalysis(a.out, an); err != nil {
				return err
			}
			return files.write(a, svc, an)
		},
	}
	files.register(cmd)
	return cmd
}
