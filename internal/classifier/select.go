package classifier

import (
	"os"

	"go.uber.org/zap"
)

// Loader opens a classifier artifact.
type Loader func(path string) (Predictor, error)

// Select probes for the artifact at path once. A missing path, a missing file
// or a load failure degrades to a DemoClassifier; start-up never fails here.
func Select(path string, load Loader, log *zap.Logger) Classifier {
	if path == "" {
		log.Warn("no classifier artifact configured, running in demo mode")
		return NewDemoClassifier(nil)
	}
	if _, err := os.Stat(path); err != nil {
		log.Warn("classifier artifact not found, running in demo mode",
			zap.String("path", path), zap.Error(err))
		return NewDemoClassifier(nil)
	}
	p, err := load(path)
	if err != nil {
		log.Warn("could not load classifier artifact, running in demo mode",
			zap.String("path", path), zap.Error(err))
		return NewDemoClassifier(nil)
	}
	log.Info("classifier artifact loaded", zap.String("path", path))
	return NewModelClassifier(p)
}
