// Package classifier assigns a disease label to a leaf photo.
//
// Two variants exist: ModelClassifier runs a trained artifact and
// DemoClassifier returns plausible random results when no artifact is
// available. The variant is chosen once at start-up by Select.
package classifier

import (
	"context"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

// Mode identifies which classifier variant produced a prediction.
type Mode string

const (
	// ModeModel marks predictions computed by a loaded artifact.
	ModeModel Mode = "model"
	// ModeDemo marks simulated predictions.
	ModeDemo Mode = "demo"
)

// Prediction is the top-1 result of a classification.
type Prediction struct {
	Label models.Label
	// Confidence is the label probability in percent, 0..100.
	Confidence float64
}

// Classifier assigns a label from the closed label set to an encoded image.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Prediction, error)
	Mode() Mode
}
