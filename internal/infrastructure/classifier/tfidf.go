// Package classifier scores text with a TF-IDF + logistic regression model exported to JSON.
package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/servconnect/mlservices/internal/domain"
)

// tokenRegex is the default word token pattern of the exporting vectorizer
var tokenRegex = regexp.MustCompile(`\b\w\w+\b`)

// Artifact is the on-disk form of a fitted vectorizer and linear model.
type Artifact struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	StopWords  []string       `json:"stop_words"`
	NgramRange [2]int         `json:"ngram_range"`
	Lowercase  *bool          `json:"lowercase,omitempty"`
	Coef       []float64      `json:"coef"`
	Intercept  float64        `json:"intercept"`
}

// TFIDFLogistic is a domain.TextClassifier. It is immutable after construction.
type TFIDFLogistic struct {
	vocabulary map[string]int
	idf        []float64
	stopWords  map[string]struct{}
	minN, maxN int
	lowercase  bool
	coef       []float64
	intercept  float64
}

// Load reads a JSON artifact from path.
func Load(path string) (*TFIDFLogistic, error) {
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

// New validates an artifact and builds the classifier.
func New(a Artifact) (*TFIDFLogistic, error) {
	n := len(a.Vocabulary)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", domain.ErrModelArtifact)
	}
	if len(a.IDF) != n || len(a.Coef) != n {
		return nil, fmt.Errorf("%w: vocabulary has %d terms but idf has %d and coef has %d",
			domain.ErrModelArtifact, n, len(a.IDF), len(a.Coef))
	}
	for term, idx := range a.Vocabulary {
		if idx < 0 || idx >= n {
			return nil, fmt.Errorf("%w: term %q has index %d out of range", domain.ErrModelArtifact, term, idx)
		}
	}

	minN, maxN := a.NgramRange[0], a.NgramRange[1]
	if minN == 0 && maxN == 0 {
		minN, maxN = 1, 1
	}
	if minN < 1 || maxN < minN {
		return nil, fmt.Errorf("%w: invalid ngram range %v", domain.ErrModelArtifact, a.NgramRange)
	}

	stop := make(map[string]struct{}, len(a.StopWords))
	for _, w := range a.StopWords {
		stop[w] = struct{}{}
	}

	lowercase := true
	if a.Lowercase != nil {
		lowercase = *a.Lowercase
	}

	return &TFIDFLogistic{
		vocabulary: a.Vocabulary,
		idf:        a.IDF,
		stopWords:  stop,
		minN:       minN,
		maxN:       maxN,
		lowercase:  lowercase,
		coef:       a.Coef,
		intercept:  a.Intercept,
	}, nil
}

// Terms returns the word n-grams of text after stop-word removal.
func (m *TFIDFLogistic) Terms(text string) []string {
	if m.lowercase {
		text = strings.ToLower(text)
	}
	var tokens []string
	for _, tok := range tokenRegex.FindAllString(text, -1) {
		if _, skip := m.stopWords[tok]; !skip {
			tokens = append(tokens, tok)
		}
	}

	var terms []string
	for n := m.minN; n <= m.maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Vectorize returns the L2-normalized sparse TF-IDF vector of text.
func (m *TFIDFLogistic) Vectorize(text string) map[int]float64 {
	counts := map[int]float64{}
	for _, term := range m.Terms(text) {
		if idx, ok := m.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	var norm float64
	for idx, c := range counts {
		v := c * m.idf[idx]
		counts[idx] = v
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range counts {
			counts[idx] /= norm
		}
	}
	return counts
}

// PredictProba returns the probability of the positive (harmful) class.
func (m *TFIDFLogistic) PredictProba(text string) (float64, error) {
	z := m.intercept
	for idx, v := range m.Vectorize(text) {
		z += m.coef[idx] * v
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
