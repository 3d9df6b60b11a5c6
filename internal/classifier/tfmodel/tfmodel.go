// Package tfmodel runs a TensorFlow Lite leaf classifier.
package tfmodel

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tphakala/go-tflite"
	"go.uber.org/zap"
)

// Predictor owns a TensorFlow Lite interpreter. Invocations are serialized;
// the interpreter is not safe for concurrent use.
type Predictor struct {
	mu          sync.Mutex
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	inputLen    int
	outputLen   int
}

// Load reads the artifact at path and allocates its tensors.
func Load(path string, threads int, log *zap.Logger) (*Predictor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	model := tflite.NewModel(data)
	if model == nil {
		return nil, errors.New("cannot load TensorFlow Lite model")
	}

	options := tflite.NewInterpreterOptions()
	options.SetNumThread(max(1, threads))
	options.SetErrorReporter(func(msg string, _ any) {
		log.Error("tflite error", zap.String("message", msg))
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, errors.New("cannot create interpreter")
	}

	p := &Predictor{model: model, options: options, interpreter: interpreter}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		p.Close()
		return nil, fmt.Errorf("tensor allocation failed: %v", status)
	}

	input := interpreter.GetInputTensor(0)
	output := interpreter.GetOutputTensor(0)
	if input == nil || output == nil {
		p.Close()
		return nil, errors.New("model has no input or output tensor")
	}
	if input.Type() != tflite.Float32 {
		p.Close()
		return nil, fmt.Errorf("unsupported input tensor type %v", input.Type())
	}
	p.inputLen = len(input.Float32s())
	p.outputLen = output.Dim(output.NumDims() - 1)

	log.Debug("tflite model initialized",
		zap.Int("input_len", p.inputLen),
		zap.Int("output_len", p.outputLen))
	return p, nil
}

// Predict copies input into the input tensor, invokes the interpreter and
// returns a copy of the output scores.
func (p *Predictor) Predict(input []float32) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(input) != p.inputLen {
		return nil, fmt.Errorf("input has %d values, model expects %d", len(input), p.inputLen)
	}

	inputTensor := p.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.New("cannot get input tensor")
	}
	copy(inputTensor.Float32s(), input)

	if status := p.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputTensor := p.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, errors.New("cannot get output tensor")
	}
	scores := make([]float32, p.outputLen)
	copy(scores, outputTensor.Float32s())
	return scores, nil
}

// Close releases the interpreter, its options and the model.
func (p *Predictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interpreter != nil {
		p.interpreter.Delete()
		p.interpreter = nil
	}
	if p.options != nil {
		p.options.Delete()
		p.options = nil
	}
	if p.model != nil {
		p.model.Delete()
		p.model = nil
	}
	return nil
}
