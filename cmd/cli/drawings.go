package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// pointsDocument is the on-disk form of a drawing, the same body the HTTP
// API accepts.
type pointsDocument struct {
	Points [][2]float64 `json:"points"`
}

func readPointsFile(path string) ([]model.PixelPoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read points file: %w", err)
	}
	var doc pointsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode points file %s: %w", path, err)
	}

	points := make([]model.PixelPoint, len(doc.Points))
	for i, p := range doc.Points {
		points[i] = model.PixelPoint{X: p[0], Y: p[1]}
	}
	return points, nil
}

func newDrawingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drawings",
		Short: "Manage saved drawings",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved drawings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					drawings, err := svc.ListDrawings(ctx)
					if err != nil {
						return err
					}
					if len(drawings) == 0 {
						fmt.Fprintln(a.out, "No drawings saved")
						return nil
					}
					fmt.Fprintf(a.out, "Found %d drawing(s):\n", len(drawings))
					return writeDrawingTable(a.out, drawings)
				})
			},
		},
		&cobra.Command{
			Use:   "save <name> <points.json>",
			Short: "Save a points file under a name",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				points, err := readPointsFile(args[1])
				if err != nil {
					return err
				}
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					d, err := svc.SaveDrawing(ctx, args[0], points)
					if err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintf(a.out, "Saved drawing %s (%d points)\n", d.Name, len(points))
					fmt.Fprintf(a.out, "   Key: %s\n", d.Key)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "show <name>",
			Short: "Print a drawing as a points document",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					d, err := svc.GetDrawing(ctx, args[0])
					if err != nil {
						return notFound(err, args[0])
					}
					doc := pointsDocument{Points: make([][2]float64, len(d.Points))}
					for i, p := range d.Points {
						doc.Points[i] = [2]float64{p.X, p.Y}
					}
					enc := json.NewEncoder(a.out)
					enc.SetIndent("", "  ")
					return enc.Encode(doc)
				})
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a drawing",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					if err := svc.DeleteDrawing(ctx, args[0]); err != nil {
						return notFound(err, args[0])
					}
					color.New(color.FgGreen).Fprintf(a.out, "Deleted drawing %s\n", args[0])
					return nil
				})
			},
		},
	)
	return cmd
}

func notFound(err error, name string) error {
	if errors.Is(err, ekglab.ErrNotFound) {
		return fmt.Errorf("drawing %q: %w", name, err)
	}
	return err
}

// withService opens the service for the length of fn.
func (a *app) withService(cmd *cobra.Command, fn func(ctx context.Context, svc ekglab.Service) error) error {
	svc, err := a.openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := commandContext(cmd, time.Minute)
	defer cancel()
	return fn(ctx, svc)
}
