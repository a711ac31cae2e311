// Package npu wraps an ONNX Runtime session that stands in for the
// on-device NPU inference accelerator, turning assembled frontend feature
// tensors into CTC logits.
package npu

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/orangepi5/micasr/internal/errors"
)

var (
	envOnce sync.Once
	envErr  error
)

// Config selects the runtime shared library and model path.
type Config struct {
	SharedLibraryPath string
	ModelPath         string
	InputName         string
	OutputName        string
}

// Engine owns one loaded ONNX model session.
type Engine struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	inputShape ort.Shape
}

// initEnvironment initializes the shared ONNX Runtime environment exactly
// once per process, matching the library's single-environment contract.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Load builds an inference Engine for the given input tensor shape
// (typically [1, RKNNInputLen, embedding dim]).
func Load(cfg Config, inputShape []int64) (*Engine, error) {
	if err := initEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, errors.New(err).Component("npu").Category(errors.CategoryInit).
			Context("operation", "init_environment").Build()
	}

	shape := ort.NewShape(inputShape...)
	inputTensor, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, errors.New(err).Component("npu").Category(errors.CategoryInit).
			Context("operation", "alloc_input_tensor").Build()
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape())
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.New(err).Component("npu").Category(errors.CategoryInit).
			Context("operation", "alloc_output_tensor").Build()
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{inputTensor}, []ort.Value{outputTensor}, nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.New(err).Component("npu").Category(errors.CategoryInit).
			Context("model_path", cfg.ModelPath).Build()
	}

	return &Engine{
		session:    session,
		input:      inputTensor,
		output:     outputTensor,
		inputShape: shape,
	}, nil
}

// Infer copies features into the bound input tensor, runs the session, and
// returns the flat output logits alongside the output tensor's shape.
func (e *Engine) Infer(features []float32) ([]float32, []int64, error) {
	data := e.input.GetData()
	if len(data) != len(features) {
		return nil, nil, errors.New(fmt.Errorf("expected %d input values, got %d", len(data), len(features))).
			Component("npu").Category(errors.CategoryInference).Build()
	}
	copy(data, features)

	if err := e.session.Run(); err != nil {
		return nil, nil, errors.New(err).Component("npu").Category(errors.CategoryInference).
			Context("operation", "session_run").Build()
	}

	out := e.output.GetData()
	if len(out) == 0 {
		return nil, nil, errors.New(nil).Component("npu").Category(errors.CategoryInference).
			Context("error", "empty inference output").Build()
	}

	result := make([]float32, len(out))
	copy(result, out)
	return result, e.output.GetShape(), nil
}

// Close releases the session and its bound tensors.
func (e *Engine) Close() {
	if e.session != nil {
		e.session.Destroy()
	}
	if e.input != nil {
		e.input.Destroy()
	}
	if e.output != nil {
		e.output.Destroy()
	}
}

// LogitsToMatrix reshapes a flat [frames*vocab] output into [vocab][frames]
// the way internal/decode expects, given the frame and vocab sizes.
func LogitsToMatrix(flat []float32, frames, vocab int) [][]float64 {
	out := make([][]float64, vocab)
	for v := 0; v < vocab; v++ {
		out[v] = make([]float64, frames)
	}
	for f := 0; f < frames; f++ {
		for v := 0; v < vocab; v++ {
			idx := f*vocab + v
			if idx < len(flat) {
				out[v][f] = float64(flat[idx])
			}
		}
	}
	return out
}
