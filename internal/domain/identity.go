package domain

// Point is a pixel coordinate in an OCR bounding box.
type Point [2]int

// TextFragment is one line of text detected by OCR.
type TextFragment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0-1
	BBox       []Point `json:"bbox"`       // clockwise from top-left
}

// CandidateSource records how a name candidate was extracted.
type CandidateSource string

const (
	SourceSameLine   CandidateSource = "same_line"
	SourceNextLine   CandidateSource = "next_line"
	SourceStandalone CandidateSource = "standalone"
)

// NameCandidate is a string that might be the card holder's name.
type NameCandidate struct {
	Name       string          `json:"name"`
	Confidence float64         `json:"confidence"`
	Source     CandidateSource `json:"source"`
}

// NameMatch is the best scoring candidate for a user name.
type NameMatch struct {
	ExtractedName string          `json:"extracted_name"`
	Similarity    float64         `json:"similarity"`
	OCRConfidence float64         `json:"ocr_confidence"`
	Source        CandidateSource `json:"source"`
}

// VerifyRequest is the body of POST /verify.
type VerifyRequest struct {
	UserName    string   `json:"user_name"`
	ImageBase64 string   `json:"image_base64,omitempty"`
	ImagePath   string   `json:"image_path,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty" binding:"omitempty,gt=0,lte=1"`
}

// ExtractTextRequest is the body of POST /extract-text.
type ExtractTextRequest struct {
	ImageBase64 string `json:"image_base64,omitempty"`
	ImagePath   string `json:"image_path,omitempty"`
}

// VerificationResult is the outcome of comparing an ID card against a user name.
type VerificationResult struct {
	Verified        bool       `json:"verified"`
	AutoApproved    bool       `json:"auto_approved"`
	SimilarityScore float64    `json:"similarity_score"`
	Threshold       float64    `json:"threshold"`
	UserName        string     `json:"user_name"`
	ExtractedNames  []string   `json:"extracted_names"`
	BestMatch       *NameMatch `json:"best_match"`
	AllTextDetected []string   `json:"all_text_detected"`
	Message         string     `json:"message"`
}
