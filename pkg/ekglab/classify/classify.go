// Package classify compares a FeatureSummary against reference ranges.
package classify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
)

// Classify runs the seven range checks in a fixed order. Every failing check
// contributes one reason; the verdict is normal only when none fail.
func Classify(fs model.FeatureSummary, r model.ReferenceRanges) model.Verdict {
	reasons := []string{}

	if !within(fs.HeartRateHz, r.FreqMin, r.FreqMax) {
		reasons = append(reasons, fmt.Sprintf("Heart rate %.2f Hz (%.0f BPM), normal: %s-%s Hz (%.0f-%.0f BPM)",
			fs.HeartRateHz, fs.HeartRateBpm, num(r.FreqMin), num(r.FreqMax), r.FreqMin*60, r.FreqMax*60))
	}
	if !within(fs.PAmplitudeAvg, r.PMin, r.PMax) {
		reasons = append(reasons, fmt.Sprintf("P amplitude %.2f mV, normal: %s-%s mV",
			fs.PAmplitudeAvg, num(r.PMin), num(r.PMax)))
	}
	if !within(fs.QRSAmplitudeAvg, r.QRSMin, r.QRSMaxLimit) {
		reasons = append(reasons, fmt.Sprintf("QRS amplitude %.2f mV, normal: %s-%s mV",
			fs.QRSAmplitudeAvg, num(r.QRSMin), num(r.QRSMaxLimit)))
	}
	if !within(fs.TAmplitudeAvg, r.TMin, r.TMax) {
		reasons = append(reasons, fmt.Sprintf("T amplitude %.2f mV, normal: %s-%s mV",
			fs.TAmplitudeAvg, num(r.TMin), num(r.TMax)))
	}
	if !within(fs.PRInterval, r.PRMin, r.PRMax) {
		reasons = append(reasons, fmt.Sprintf("PR interval %.2f s, normal: %s-%s s",
			fs.PRInterval, num(r.PRMin), num(r.PRMax)))
	}
	if !(fs.QRSDuration <= r.QRSDurationMax) {
		reasons = append(reasons, fmt.Sprintf("QRS duration %.2f s, normal: <%s s",
			fs.QRSDuration, num(r.QRSDurationMax)))
	}
	if !within(fs.QTInterval, r.QTMin, r.QTMax) {
		reasons = append(reasons, fmt.Sprintf("QT interval %.2f s, normal: %s-%s s",
			fs.QTInterval, num(r.QTMin), num(r.QTMax)))
	}

	return model.Verdict{IsNormal: len(reasons) == 0, Reasons: reasons}
}

// within is false for NaN.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Report renders the measured features, the reference table and, for an
// abnormal verdict, the reasons as a multi-line result text.
func Report(fs model.FeatureSummary, r model.ReferenceRanges, v model.Verdict) string {
	var b strings.Builder

	result := "Normal"
	if !v.IsNormal {
		result = "Abnormal"
	}
	fmt.Fprintf(&b, "Result: %s\n", result)
	fmt.Fprintf(&b, "Heart rate: %.2f Hz (%.0f BPM)\n", fs.HeartRateHz, fs.HeartRateBpm)
	fmt.Fprintf(&b, "P amplitude: %.2f mV\n", fs.PAmplitudeAvg)
	fmt.Fprintf(&b, "QRS amplitude: %.2f mV\n", fs.QRSAmplitudeAvg)
	fmt.Fprintf(&b, "T amplitude: %.2f mV\n", fs.TAmplitudeAvg)
	fmt.Fprintf(&b, "PR interval: %.2f s\n", fs.PRInterval)
	fmt.Fprintf(&b, "QRS duration: %.2f s\n", fs.QRSDuration)
	fmt.Fprintf(&b, "QT interval: %.2f s\n", fs.QTInterval)

	b.WriteString("\nNormal EKG parameters:\n")
	fmt.Fprintf(&b, "Heart rate: %s-%s Hz (%.0f-%.0f BPM)\n", num(r.FreqMin), num(r.FreqMax), r.FreqMin*60, r.FreqMax*60)
	fmt.Fprintf(&b, "P amplitude: %s-%s mV\n", num(r.PMin), num(r.PMax))
	fmt.Fprintf(&b, "QRS amplitude: %s-%s mV\n", num(r.QRSMin), num(r.QRSMaxLimit))
	fmt.Fprintf(&b, "T amplitude: %s-%s mV\n", num(r.TMin), num(r.TMax))
	fmt.Fprintf(&b, "PR interval: %s-%s s\n", num(r.PRMin), num(r.PRMax))
	fmt.Fprintf(&b, "QRS duration: <%s s\n", num(r.QRSDurationMax))
	fmt.Fprintf(&b, "QT interval: %s-%s s", num(r.QTMin), num(r.QTMax))

	if !v.IsNormal {
		b.WriteString("\nAbnormal because:\n")
		b.WriteString(strings.Join(v.Reasons, "\n"))
	}

	return b.String()
}
