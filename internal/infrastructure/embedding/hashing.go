package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// DefaultHashingDimension matches the width of the MiniLM sentence embeddings
const DefaultHashingDimension = 384

// HashingEncoder embeds text with signed feature hashing of character n-grams
// and word unigrams. It needs no model files or network access.
type HashingEncoder struct {
	dimension int
	minN      int
	maxN      int
}

// NewHashingEncoder creates an encoder producing vectors of the given dimension.
func NewHashingEncoder(dimension int) *HashingEncoder {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingEncoder{dimension: dimension, minN: 3, maxN: 4}
}

// ModelName identifies the feature space so cached vectors are never mixed.
func (e *HashingEncoder) ModelName() string {
	return fmt.Sprintf("hashing-char%d%d-%d", e.minN, e.maxN, e.dimension)
}

// Encode returns one L2-normalized vector per text.
func (e *HashingEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.encodeOne(text)
	}
	return out, nil
}

func (e *HashingEncoder) encodeOne(text string) []float32 {
	vec := make([]float64, e.dimension)
	words := strings.Fields(strings.ToLower(text))

	for _, w := range words {
		e.add(vec, "w:"+w)
		runes := []rune(" " + w + " ")
		for n := e.minN; n <= e.maxN; n++ {
			for i := 0; i+n <= len(runes); i++ {
				e.add(vec, string(runes[i:i+n]))
			}
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, e.dimension)
	if norm == 0 {
		return out
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out
}

func (e *HashingEncoder) add(vec []float64, feature string) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(e.dimension))
	if h&(1<<63) != 0 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}
