// Package ocr runs the tesseract CLI and turns its TSV output into line fragments.
package ocr

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/servconnect/mlservices/internal/domain"
)

// wordLevel is the TSV row level for a recognized word
const wordLevel = 5

// Tesseract is a domain.TextReader backed by the tesseract binary.
type Tesseract struct {
	binary    string
	languages string
	logger    *zap.Logger
}

// NewTesseract creates a reader. languages is a tesseract language list such as "eng" or "eng+hin".
func NewTesseract(binary, languages string, logger *zap.Logger) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if languages == "" {
		languages = "eng"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tesseract{binary: binary, languages: languages, logger: logger}
}

// Available reports whether the tesseract binary can be found.
func (t *Tesseract) Available() bool {
	_, err := exec.LookPath(t.binary)
	return err == nil
}

// ReadText runs OCR over imagePath and returns one fragment per detected line.
func (t *Tesseract) ReadText(ctx context.Context, imagePath string) ([]domain.TextFragment, error) {
	args := []string{imagePath, "stdout", "-l", t.languages, "tsv"}
	cmd := exec.CommandContext(ctx, t.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", domain.ErrOCRFailure, err, strings.TrimSpace(stderr.String()))
	}

	fragments, err := ParseTSV(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}

	t.logger.Debug("tesseract finished", zap.String("image", imagePath), zap.Int("lines", len(fragments)))
	return fragments, nil
}

type lineKey struct {
	page, block, par, line int
}

type lineAcc struct {
	words                  []string
	confSum                float64
	left, top, right, bott int
}

// ParseTSV groups word rows of tesseract TSV output into lines.
// Line confidence is the mean word confidence scaled to [0,1].
func ParseTSV(r io.Reader) ([]domain.TextFragment, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var order []lineKey
	lines := map[lineKey]*lineAcc{}
	header := true

	for scanner.Scan() {
		row := scanner.Text()
		if header {
			header = false
			if strings.HasPrefix(row, "level") {
				continue
			}
		}
		cols := strings.Split(row, "\t")
		if len(cols) < 12 {
			continue
		}
		nums := make([]int, 10)
		for i := 0; i < 10; i++ {
			n, err := strconv.Atoi(cols[i])
			if err != nil {
				return nil, fmt.Errorf("malformed tsv row %q: %w", row, err)
			}
			nums[i] = n
		}
		if nums[0] != wordLevel {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed confidence %q: %w", cols[10], err)
		}
		text := strings.TrimSpace(strings.Join(cols[11:], "\t"))
		if text == "" || conf < 0 {
			continue
		}

		key := lineKey{nums[1], nums[2], nums[3], nums[4]}
		left, top, width, height := nums[6], nums[7], nums[8], nums[9]
		acc, ok := lines[key]
		if !ok {
			acc = &lineAcc{left: left, top: top, right: left + width, bott: top + height}
			lines[key] = acc
			order = append(order, key)
		}
		acc.words = append(acc.words, text)
		acc.confSum += conf
		acc.left = min(acc.left, left)
		acc.top = min(acc.top, top)
		acc.right = max(acc.right, left+width)
		acc.bott = max(acc.bott, top+height)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	fragments := make([]domain.TextFragment, 0, len(order))
	for _, key := range order {
		acc := lines[key]
		fragments = append(fragments, domain.TextFragment{
			Text:       strings.Join(acc.words, " "),
			Confidence: acc.confSum / float64(len(acc.words)) / 100,
			BBox: []domain.Point{
				{acc.left, acc.top},
				{acc.right, acc.top},
				{acc.right, acc.bott},
				{acc.left, acc.bott},
			},
		})
	}
	return fragments, nil
}
