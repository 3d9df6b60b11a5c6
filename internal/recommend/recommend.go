// Package recommend produces markdown treatment advice for a diagnosed label.
package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdityaD28/GreenGuardian/internal/models"
)

// HealthyMessage is returned for every label whose display name contains "healthy".
const HealthyMessage = "The plant appears to be healthy! No treatment is necessary."

// placeholderKey was shipped as a default credential; it counts as unset.
const placeholderKey = "dummy_key_for_testing"

// Source tells how a recommendation was produced.
type Source string

const (
	SourceHealthy   Source = "healthy"
	SourceTemplate  Source = "template"
	SourceGenerated Source = "generated"
	SourceError     Source = "error"
)

// TextGenerator calls an external generative-text service.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithObserver registers fn to be called once per recommendation.
func WithObserver(fn func(models.Label, Source)) Option {
	return func(g *Generator) { g.observe = fn }
}

// Generator builds recommendations. Without a TextGenerator it only uses the
// local template.
type Generator struct {
	client  TextGenerator
	timeout time.Duration
	observe func(models.Label, Source)
}

// New returns a Generator. client may be nil for template mode; timeout bounds
// each external call.
func New(client TextGenerator, timeout time.Duration, opts ...Option) *Generator {
	g := &Generator{client: client, timeout: timeout}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HasCredential reports whether key can be used against the external service.
func HasCredential(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderKey
}

// Mode is "generated" when an external service is configured, "template" otherwise.
func (g *Generator) Mode() Source {
	if g.client == nil {
		return SourceTemplate
	}
	return SourceGenerated
}

// Recommend never fails: service errors are folded into the returned text.
func (g *Generator) Recommend(ctx context.Context, label models.Label) string {
	text, src := g.recommend(ctx, label)
	if g.observe != nil {
		g.observe(label, src)
	}
	return text
}

func (g *Generator) recommend(ctx context.Context, label models.Label) (string, Source) {
	// Plain substring match on the display name, not a per-label health flag.
	if strings.Contains(strings.ToLower(label.DisplayName()), "healthy") {
		return HealthyMessage, SourceHealthy
	}
	if g.client == nil {
		return Template(label), SourceTemplate
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	text, err := g.client.GenerateText(ctx, Prompt(label))
	if err != nil {
		return fmt.Sprintf("Error generating recommendation: %v", err), SourceError
	}
	return text, SourceGenerated
}

// Prompt is the request sent to the external service for label.
func Prompt(label models.Label) string {
	return fmt.Sprintf(`You are GreenGuardian, an expert AI assistant for plant health.
A plant has been diagnosed with: %q.
Please provide a helpful, easy-to-understand guide for a home gardener on how to treat this disease. Structure your response in clear sections (e.g., Overview, Immediate Actions, Treatment, Prevention). Use markdown for formatting.`,
		label.DisplayName())
}

const templateText = `## Treatment for {{name}}

### Overview
This plant has been diagnosed with {{name}}. Here's a general treatment approach:

### Immediate Actions
1. **Isolate** the affected plant to prevent spread
2. **Remove** any severely affected leaves
3. **Improve** air circulation around the plant

### Treatment
- Apply appropriate fungicide or treatment based on the specific condition
- Adjust watering schedule to prevent overwatering
- Ensure proper lighting conditions

### Prevention
- Maintain good plant hygiene
- Avoid overcrowding plants
- Water at soil level, not on leaves
- Monitor regularly for early signs

*Note: This is a general recommendation. For a detailed AI-powered treatment plan, please configure the Gemini API key.*`

// Template is the deterministic recommendation used without a credential.
func Template(label models.Label) string {
	return strings.ReplaceAll(templateText, "{{name}}", label.DisplayName())
}
