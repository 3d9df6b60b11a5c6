package classifier

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

// Demo confidence bounds, in percent.
const (
	DemoMinConfidence = 75.0
	DemoMaxConfidence = 98.0
)

// demoLabels leans towards healthy samples.
var demoLabels = []models.Label{
	models.TomatoHealthy,
	models.PepperBellHealthy,
	models.PotatoHealthy,
	models.TomatoEarlyBlight,
	models.PotatoLateBlight,
	models.TomatoBacterialSpot,
}

// DemoLabels returns the labels the demo classifier draws from.
func DemoLabels() []models.Label {
	out := make([]models.Label, len(demoLabels))
	copy(out, demoLabels)
	return out
}

// DemoClassifier ignores the image and returns a random label from DemoLabels
// with a confidence drawn uniformly from [DemoMinConfidence, DemoMaxConfidence].
type DemoClassifier struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDemoClassifier uses rng, or a time-seeded source when rng is nil.
func NewDemoClassifier(rng *rand.Rand) *DemoClassifier {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &DemoClassifier{rng: rng}
}

func (c *DemoClassifier) Mode() Mode { return ModeDemo }

func (c *DemoClassifier) Classify(ctx context.Context, _ []byte) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	label := demoLabels[c.rng.IntN(len(demoLabels))]
	confidence := DemoMinConfidence + c.rng.Float64()*(DemoMaxConfidence-DemoMinConfidence)
	return Prediction{Label: label, Confidence: confidence}, nil
}
