package usecase

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/servconnect/mlservices/internal/domain"
)

// DefaultNameThreshold is the similarity needed for automatic approval.
const DefaultNameThreshold = 0.75

// Package-level compiled regex patterns
var (
	fieldSeparatorRegex = regexp.MustCompile(`[:\-]`)
	alphaLineRegex      = regexp.MustCompile(`^[A-Za-z\s]+$`)
	standaloneNameRegex = regexp.MustCompile(`^[A-Za-z\s]{3,50}$`)
	nonLetterRegex      = regexp.MustCompile(`[^a-z\s]`)
	whitespaceRegex     = regexp.MustCompile(`\s+`)
)

// nameIndicators are labels printed next to the holder's name on Indian ID cards
var nameIndicators = []string{
	"name", "naam", "father", "husband", "mother", "son", "daughter",
	"holder", "applicant", "voter", "elector",
}

// boilerplateWords disqualify a line from being a standalone name
var boilerplateWords = []string{
	"government", "india", "republic", "identity", "card", "aadhar",
	"aadhaar", "voter", "election", "commission", "permanent",
	"account", "number", "income", "tax", "department", "male",
	"female", "address", "date", "birth", "dob",
}

const (
	maxStandaloneWords       = 5
	standaloneConfidenceGate = 0.7
)

// NameResolver extracts name candidates from OCR output and scores them against a user name.
type NameResolver struct {
	logger *zap.Logger
}

// NewNameResolver creates a resolver. A nil logger disables debug output.
func NewNameResolver(logger *zap.Logger) *NameResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NameResolver{logger: logger}
}

// ExtractCandidates returns the name candidates found in the fragments and the
// fragments that were long enough to be considered.
func (r *NameResolver) ExtractCandidates(fragments []domain.TextFragment) ([]domain.NameCandidate, []domain.TextFragment) {
	lines := make([]domain.TextFragment, 0, len(fragments))
	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if utf8.RuneCountInString(text) > 2 {
			f.Text = text
			lines = append(lines, f)
		}
	}

	var candidates []domain.NameCandidate
	for i, line := range lines {
		if c, ok := indicatorCandidate(lines, i); ok {
			candidates = append(candidates, c)
		}
		if c, ok := standaloneCandidate(line); ok {
			candidates = append(candidates, c)
		}
	}

	r.logger.Debug("extracted name candidates",
		zap.Int("fragments", len(lines)),
		zap.Int("candidates", len(candidates)))

	return candidates, lines
}

// indicatorCandidate looks for "Name: X" on the same line or X on the following line.
func indicatorCandidate(lines []domain.TextFragment, i int) (domain.NameCandidate, bool) {
	line := lines[i]
	lower := strings.ToLower(line.Text)

	hasIndicator := false
	for _, indicator := range nameIndicators {
		if strings.Contains(lower, indicator) {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return domain.NameCandidate{}, false
	}

	parts := fieldSeparatorRegex.Split(line.Text, -1)
	if len(parts) > 1 {
		name := strings.TrimSpace(parts[len(parts)-1])
		if utf8.RuneCountInString(name) > 2 && isAlpha(strings.ReplaceAll(name, " ", "")) {
			return domain.NameCandidate{Name: name, Confidence: line.Confidence, Source: domain.SourceSameLine}, true
		}
		return domain.NameCandidate{}, false
	}

	if i+1 < len(lines) {
		next := strings.TrimSpace(lines[i+1].Text)
		if utf8.RuneCountInString(next) > 2 && alphaLineRegex.MatchString(next) {
			return domain.NameCandidate{Name: next, Confidence: lines[i+1].Confidence, Source: domain.SourceNextLine}, true
		}
	}
	return domain.NameCandidate{}, false
}

// standaloneCandidate accepts short, purely alphabetic, name-cased lines.
func standaloneCandidate(line domain.TextFragment) (domain.NameCandidate, bool) {
	text := strings.TrimSpace(line.Text)
	if !standaloneNameRegex.MatchString(text) {
		return domain.NameCandidate{}, false
	}

	lower := strings.ToLower(text)
	for _, w := range boilerplateWords {
		if strings.Contains(lower, w) {
			return domain.NameCandidate{}, false
		}
	}

	words := strings.Fields(text)
	if len(words) < 1 || len(words) > maxStandaloneWords {
		return domain.NameCandidate{}, false
	}

	capitalized := true
	for _, w := range words {
		if !unicode.IsUpper([]rune(w)[0]) {
			capitalized = false
			break
		}
	}
	if !capitalized && line.Confidence <= standaloneConfidenceGate {
		return domain.NameCandidate{}, false
	}

	return domain.NameCandidate{Name: text, Confidence: line.Confidence, Source: domain.SourceStandalone}, true
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// FindBestMatch returns the candidate most similar to userName.
// Ties keep the earliest candidate; nil is returned when nothing scores above zero.
func (r *NameResolver) FindBestMatch(ctx context.Context, userName string, candidates []domain.NameCandidate) (*domain.NameMatch, float64, error) {
	var best *domain.NameMatch
	bestSimilarity := 0.0

	for _, c := range candidates {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		similarity := NameSimilarity(userName, c.Name)
		r.logger.Debug("scored name candidate",
			zap.String("candidate", c.Name),
			zap.String("source", string(c.Source)),
			zap.Float64("similarity", similarity))

		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = &domain.NameMatch{
				ExtractedName: c.Name,
				Similarity:    similarity,
				OCRConfidence: c.Confidence,
				Source:        c.Source,
			}
		}
	}

	return best, bestSimilarity, nil
}

// NormalizeName folds accents, lowercases, drops non-letters and collapses whitespace.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	result := strings.ToLower(folded)
	result = nonLetterRegex.ReplaceAllString(result, "")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// NameSimilarity is the character-level matching-block ratio of two normalized names, in [0,1].
func NameSimilarity(a, b string) float64 {
	na := NormalizeName(a)
	nb := NormalizeName(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	// The block matcher breaks ties by position, so fix the argument order.
	if nb < na {
		na, nb = nb, na
	}
	return difflib.NewMatcher(splitChars(na), splitChars(nb)).Ratio()
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
