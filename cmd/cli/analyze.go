package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		pointsFile string
		files      outputFiles
	)

	cmd := &cobra.Command{
		Use:   "analyze [drawing]",
		Short: "Classify a saved drawing or a points file",
		Example: `  ekglab analyze sinus
  ekglab analyze --file trace.json --png trace.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (pointsFile != "") {
				return errors.New("give either a drawing name or --file")
			}

			svc, err := a.openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			ctx, cancel := commandContext(cmd, time.Minute)
			defer cancel()

			var an *ekglab.Analysis
			if pointsFile != "" {
				points, err := readPointsFile(pointsFile)
				if err != nil {
					return err
				}
				an, err = svc.AnalyzeDrawing(ctx, points)
				if err != nil {
					return err
				}
			} else {
				an, err = svc.AnalyzeSavedDrawing(ctx, args[0])
				if err != nil {
					return err
				}
			}

			if err := writeAnalysis(a.out, an); err != nil {
				return err
			}
			return files.write(a, svc, an)
		},
	}
	cmd.Flags().StringVarP(&pointsFile, "file", "f", "", "JSON points file ({\"points\": [[x, y], ...]})")
	files.register(cmd)
	return cmd
}
