//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/json"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/EKGLab/pkg/ekglab/model"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/pipeline"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/plot"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorInvalidSettings
	ErrorProcessing
)

// minSamples matches the server's threshold for analyzing a drawing.
const minSamples = 50

// result is the data payload of both exports.
type result struct {
	Status   string                `json:"status"`
	Title    string                `json:"title,omitempty"`
	Samples  [][2]float64          `json:"samples"`
	Markers  []model.Fiducial      `json:"markers,omitempty"`
	Peaks    *model.PeakSet        `json:"peaks,omitempty"`
	Features *model.FeatureSummary `json:"features,omitempty"`
	Verdict  *model.Verdict        `json:"verdict,omitempty"`
	Report   string                `json:"report,omitempty"`
}

func toResult(res *pipeline.Result) result {
	out := result{
		Status:   "ok",
		Title:    res.Title,
		Samples:  make([][2]float64, len(res.Samples)),
		Markers:  res.Markers,
		Peaks:    res.Peaks,
		Features: res.Features,
		Verdict:  res.Verdict,
		Report:   res.Report,
	}
	if res.Insufficient {
		out.Status = "insufficient_data"
	}
	for i, s := range res.Samples {
		out.Samples[i] = [2]float64{s.Time, s.Voltage}
	}
	return out
}

// parseSettings reads the optional settings JSON argument at index i.
func parseSettings(args []js.Value, i int) (settings.Settings, error) {
	if len(args) <= i || args[i].IsUndefined() || args[i].IsNull() {
		return settings.Defaults(), nil
	}
	if args[i].Type() != js.TypeString {
		return settings.Settings{}, fmt.Errorf("settingsJSON must be a string")
	}
	return settings.Parse([]byte(args[i].String()))
}

// Synthesizes a waveform and classifies it.
// Args: settingsJSON? Returns: {error: number, data: object | string}
func ekgGenerate(this js.Value, args []js.Value) interface{} {
	st, err := parseSettings(args, 0)
	if err != nil {
		return makeErrorResponse(ErrorInvalidSettings, err.Error())
	}

	res, err := pipeline.Synthetic(st)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Failed to generate waveform: %v", err))
	}
	return makeDataResponse(toResult(res))
}

// Maps a freehand polyline into plot space and classifies it.
// Args: points ([[x, y], ...]), width, height, settingsJSON?
// Returns: {error: number, data: object | string}
func ekgAnalyzeDrawing(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 3 arguments: points, width, height")
	}

	pointsJS := args[0]
	widthJS := args[1]
	heightJS := args[2]

	if pointsJS.Type() != js.TypeObject {
		return makeErrorResponse(ErrorInvalidArgs, "points must be an Array")
	}
	if widthJS.Type() != js.TypeNumber || heightJS.Type() != js.TypeNumber {
		return makeErrorResponse(ErrorInvalidArgs, "width and height must be numbers")
	}

	surface := plot.Surface{Width: widthJS.Float(), Height: heightJS.Float(), Margin: plot.DefaultMargin}
	if surface.Width <= 2*surface.Margin || surface.Height <= 2*surface.Margin {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("Surface %gx%g is smaller than its margins", surface.Width, surface.Height))
	}

	length := pointsJS.Length()
	points := make([]model.PixelPoint, length)
	for i := 0; i < length; i++ {
		p := pointsJS.Index(i)
		if p.Type() != js.TypeObject || p.Length() < 2 {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("points element %d is not an [x, y] pair", i))
		}
		x, y := p.Index(0), p.Index(1)
		if x.Type() != js.TypeNumber || y.Type() != js.TypeNumber {
			return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("points element %d has a non-numeric coordinate", i))
		}
		points[i] = model.PixelPoint{X: x.Float(), Y: y.Float()}
	}

	st, err := parseSettings(args, 3)
	if err != nil {
		return makeErrorResponse(ErrorInvalidSettings, err.Error())
	}

	return makeDataResponse(toResult(pipeline.Drawn(st, surface, points, minSamples)))
}

func makeDataResponse(data result) js.Value {
	b, err := json.Marshal(data)
	if err != nil {
		return makeErrorResponse(ErrorProcessing, fmt.Sprintf("Failed to encode result: %v", err))
	}
	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", js.Global().Get("JSON").Call("parse", string(b)))
	return result
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "EKGLab WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("ekgGenerate", js.FuncOf(ekgGenerate))
	js.Global().Set("ekgAnalyzeDrawing", js.FuncOf(ekgAnalyzeDrawing))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	if !console.IsUndefined() {
		console.Call("log", "EKGLab WASM module loaded and ready")
	}

	<-done
}
