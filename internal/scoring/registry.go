// Package scoring loads engagement scoring weights and tier thresholds from
// an embedded YAML registry.
package scoring

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"namcportal/internal/domain/models"
)

//go:embed config/*.yaml
var configFS embed.FS

// KindWeight is the contribution of a single event kind to the score.
// Counts above Cap stop earning points.
type KindWeight struct {
	Points float64 `yaml:"points"`
	Cap    int     `yaml:"cap"`
}

// TierBounds holds the lower score bound of each named tier. Scores below
// Casual are dormant.
type TierBounds struct {
	Casual   float64 `yaml:"casual"`
	Active   float64 `yaml:"active"`
	Champion float64 `yaml:"champion"`
}

type weightsFile struct {
	Weights map[string]KindWeight `yaml:"weights"`
	Tiers   TierBounds            `yaml:"tiers"`
}

// Registry provides weight and tier lookups. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	weights map[string]KindWeight
	tiers   TierBounds
}

// NewRegistry parses the embedded weights file.
func NewRegistry() (*Registry, error) {
	data, err := configFS.ReadFile("config/weights.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded weights: %w", err)
	}

	var file weightsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing weights yaml: %w", err)
	}
	if len(file.Weights) == 0 {
		return nil, fmt.Errorf("weights yaml defines no event kinds")
	}
	if !(file.Tiers.Casual < file.Tiers.Active && file.Tiers.Active < file.Tiers.Champion) {
		return nil, fmt.Errorf("tier bounds must be strictly increasing: %+v", file.Tiers)
	}

	return &Registry{weights: file.Weights, tiers: file.Tiers}, nil
}

// Weight returns the weight for an event kind and whether the kind is known.
// Unknown kinds score zero.
func (r *Registry) Weight(kind string) (KindWeight, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.weights[kind]
	return w, ok
}

// Kinds returns every event kind the registry scores.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.weights))
	for k := range r.weights {
		kinds = append(kinds, k)
	}
	return kinds
}

// Score converts per-kind event counts into a 0-100 score.
func (r *Registry) Score(counts []models.KindCount) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, kc := range counts {
		w, ok := r.weights[kc.Kind]
		if !ok {
			continue
		}
		n := kc.Count
		if w.Cap > 0 && n > w.Cap {
			n = w.Cap
		}
		total += float64(n) * w.Points
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// Tier maps a score onto its tier name.
func (r *Registry) Tier(score float64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch {
	case score >= r.tiers.Champion:
		return models.TierChampion
	case score >= r.tiers.Active:
		return models.TierActive
	case score >= r.tiers.Casual:
		return models.TierCasual
	default:
		return models.TierDormant
	}
}
