package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func between(lo, hi float64, unit string) string {
	return fmt.Sprintf("%s-%s %s", num(lo), num(hi), unit)
}

// writeFeatureTable prints each measured feature beside its normal range.
func writeFeatureTable(w io.Writer, fs model.FeatureSummary, r model.ReferenceRanges) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Feature", "Value", "Normal"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.PerColumn = []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignRight}
	})

	data := [][]string{
		{"Heart rate", fmt.Sprintf("%.2f Hz (%.0f BPM)", fs.HeartRateHz, fs.HeartRateBpm), between(r.FreqMin, r.FreqMax, "Hz")},
		{"P amplitude", fmt.Sprintf("%.2f mV", fs.PAmplitudeAvg), between(r.PMin, r.PMax, "mV")},
		{"QRS amplitude", fmt.Sprintf("%.2f mV", fs.QRSAmplitudeAvg), between(r.QRSMin, r.QRSMaxLimit, "mV")},
		{"T amplitude", fmt.Sprintf("%.2f mV", fs.TAmplitudeAvg), between(r.TMin, r.TMax, "mV")},
		{"PR interval", fmt.Sprintf("%.2f s", fs.PRInterval), between(r.PRMin, r.PRMax, "s")},
		{"QRS duration", fmt.Sprintf("%.2f s", fs.QRSDuration), "< " + num(r.QRSDurationMax) + " s"},
		{"QT interval", fmt.Sprintf("%.2f s", fs.QTInterval), between(r.QTMin, r.QTMax, "s")},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeAnalysis prints the feature table and the colored verdict.
func writeAnalysis(w io.Writer, a *ekglab.Analysis) error {
	if a.Title != "" {
		fmt.Fprintf(w, "%s\n", a.Title)
	}
	fmt.Fprintf(w, "Mode: %s, %d samples\n\n", a.Mode, len(a.Samples))

	if a.Status == ekglab.StatusInsufficientData {
		color.New(color.FgYellow).Fprintln(w, "Not enough data to analyze: draw a longer trace.")
		return nil
	}

	if err := writeFeatureTable(w, *a.Features, a.Settings.Ranges()); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if a.Verdict.IsNormal {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "Result: Normal")
		return nil
	}
	color.New(color.FgRed, color.Bold).Fprintln(w, "Result: Abnormal")
	for _, reason := range a.Verdict.Reasons {
		fmt.Fprintf(w, "  - %s\n", reason)
	}
	return nil
}

func writeDrawingTable(w io.Writer, drawings []ekglab.Drawing) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Name", "Key", "Updated"})

	var data [][]string
	for i, d := range drawings {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			d.Name,
			d.Key,
			d.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
