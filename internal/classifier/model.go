package classifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

// Predictor runs the network on a preprocessed NHWC float32 tensor and
// returns one probability per label.
type Predictor interface {
	Predict(input []float32) ([]float32, error)
}

// ModelClassifier classifies images with a loaded artifact.
type ModelClassifier struct {
	predictor Predictor
}

// NewModelClassifier wraps p.
func NewModelClassifier(p Predictor) *ModelClassifier {
	return &ModelClassifier{predictor: p}
}

func (c *ModelClassifier) Mode() Mode { return ModeModel }

// Classify decodes and resizes image, runs the predictor and returns the argmax label.
func (c *ModelClassifier) Classify(ctx context.Context, image []byte) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	input, err := Preprocess(image)
	if err != nil {
		return Prediction{}, err
	}
	probs, err := c.predictor.Predict(input)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}
	return topPrediction(probs)
}

// Close releases the predictor if it holds native resources.
func (c *ModelClassifier) Close() error {
	if closer, ok := c.predictor.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func topPrediction(probs []float32) (Prediction, error) {
	if len(probs) != models.NumLabels {
		return Prediction{}, fmt.Errorf("model returned %d scores, want %d", len(probs), models.NumLabels)
	}

	best := 0
	for i, p := range probs {
		if math.IsNaN(float64(p)) {
			return Prediction{}, errors.New("model returned NaN score")
		}
		if p > probs[best] {
			best = i
		}
	}

	label, err := models.LabelAt(best)
	if err != nil {
		return Prediction{}, err
	}
	confidence := float64(probs[best]) * 100
	confidence = math.Max(0, math.Min(100, confidence))

	return Prediction{Label: label, Confidence: confidence}, nil
}
