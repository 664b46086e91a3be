package domain

// ModerationRequest is the body of POST /predict on the moderation service.
type ModerationRequest struct {
	Text      *string  `json:"text"`
	Threshold *float64 `json:"threshold,omitempty" binding:"omitempty,gte=0,lte=1"`
}

// BatchModerationRequest is the body of POST /predict/batch.
type BatchModerationRequest struct {
	Texts     []string `json:"texts"`
	Threshold *float64 `json:"threshold,omitempty" binding:"omitempty,gte=0,lte=1"`
}

// ModerationResult is the verdict for a single text.
type ModerationResult struct {
	IsHarmful  bool    `json:"is_harmful"`
	Confidence float64 `json:"confidence"`
	Threshold  float64 `json:"threshold"`
}

// BatchItemResult is one entry of a batch verdict.
type BatchItemResult struct {
	Text       string  `json:"text"`
	IsHarmful  bool    `json:"is_harmful"`
	Confidence float64 `json:"confidence"`
}

// BatchModerationResult is the verdict for a batch of texts.
type BatchModerationResult struct {
	Results   []BatchItemResult `json:"results"`
	Threshold float64           `json:"threshold"`
}
