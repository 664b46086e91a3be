// Package forest evaluates random-forest classifiers exported as per-tree node arrays.
package forest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/servconnect/mlservices/internal/domain"
)

const leaf = -1

// Tree is one decision tree in array layout. Node i splits on Feature[i] at
// Threshold[i]; samples with x <= threshold go to ChildrenLeft[i]. Leaves have
// ChildrenLeft[i] == -1 and hold per-class weights in Value[i].
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest is an ensemble predicting one target.
type Forest struct {
	Classes []string `json:"classes"`
	Trees   []Tree   `json:"trees"`
}

// Artifact is the on-disk form of all wellness models.
type Artifact struct {
	FeatureNames []string            `json:"feature_names"`
	Encoders     map[string][]string `json:"encoders"`
	Targets      map[string]*Forest  `json:"targets"`
}

// Model is a domain.WellnessModel. It is immutable after construction.
type Model struct {
	featureNames []string
	encoders     map[string]map[string]int
	targets      map[string]*Forest
}

// Load reads a JSON artifact from path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrModelArtifact, err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrModelArtifact, path, err)
	}
	return New(a)
}

// New validates every tree of the artifact and builds the model.
func New(a Artifact) (*Model, error) {
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: no feature names", domain.ErrModelArtifact)
	}
	if len(a.Targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", domain.ErrModelArtifact)
	}

	for name, f := range a.Targets {
		if f == nil || len(f.Classes) == 0 || len(f.Trees) == 0 {
			return nil, fmt.Errorf("%w: target %q has no classes or trees", domain.ErrModelArtifact, name)
		}
		for i := range f.Trees {
			if err := f.Trees[i].validate(len(a.FeatureNames), len(f.Classes)); err != nil {
				return nil, fmt.Errorf("%w: target %q tree %d: %v", domain.ErrModelArtifact, name, i, err)
			}
		}
	}

	encoders := make(map[string]map[string]int, len(a.Encoders))
	for col, classes := range a.Encoders {
		idx := make(map[string]int, len(classes))
		for i, c := range classes {
			idx[c] = i
		}
		encoders[col] = idx
	}

	return &Model{
		featureNames: a.FeatureNames,
		encoders:     encoders,
		targets:      a.Targets,
	}, nil
}

func (t *Tree) validate(nFeatures, nClasses int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if len(t.Value[i]) != nClasses {
				return fmt.Errorf("leaf %d has %d class weights, want %d", i, len(t.Value[i]), nClasses)
			}
			continue
		}
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("node %d has invalid children %d/%d", i, l, r)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on unknown feature %d", i, f)
		}
	}
	return nil
}

// FeatureNames returns the feature order expected by Predict.
func (m *Model) FeatureNames() []string {
	out := make([]string, len(m.featureNames))
	copy(out, m.featureNames)
	return out
}

// Encode label-encodes a categorical value. Unknown columns and values encode to 0.
func (m *Model) Encode(column, value string) float64 {
	classes, ok := m.encoders[column]
	if !ok {
		return 0
	}
	return float64(classes[value])
}

// Predict returns the most probable class label for target.
func (m *Model) Predict(target string, features []float64) (string, error) {
	proba, err := m.PredictProba(target, features)
	if err != nil {
		return "", err
	}
	best := 0
	for i, p := range proba {
		if p > proba[best] {
			best = i
		}
	}
	return m.targets[target].Classes[best], nil
}

// PredictProba averages the normalized leaf distributions of every tree.
func (m *Model) PredictProba(target string, features []float64) ([]float64, error) {
	f, ok := m.targets[target]
	if !ok {
		return nil, fmt.Errorf("%w: unknown target %q", domain.ErrModelNotLoaded, target)
	}
	if len(features) != len(m.featureNames) {
		return nil, fmt.Errorf("%w: got %d features, want %d", domain.ErrInvalidRequest, len(features), len(m.featureNames))
	}

	proba := make([]float64, len(f.Classes))
	for i := range f.Trees {
		dist := f.Trees[i].leafValue(features)
		var total float64
		for _, v := range dist {
			total += v
		}
		if total == 0 {
			continue
		}
		for c, v := range dist {
			proba[c] += v / total
		}
	}
	for c := range proba {
		proba[c] /= float64(len(f.Trees))
	}
	return proba, nil
}

func (t *Tree) leafValue(x []float64) []float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}
