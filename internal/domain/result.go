package domain

// Caption placeholders used when no real caption is available.
const (
	CaptionNoImage       = "No image provided"
	CaptionFailed        = "Image analysis failed"
	CaptionAnalysisError = "Analysis failed"
)

// DefaultLocation is reported when the request carries no location.
const DefaultLocation = "Location not provided"

// ClassificationResult is the structured ticket produced for one complaint.
type ClassificationResult struct {
	Title             string          `json:"title"`
	ProblemIdentified ProblemCategory `json:"problemIdentified"`
	Department        string          `json:"department"`
	Priority          Priority        `json:"priority"`
	PriorityRank      int             `json:"priorityRank"`
	Category          string          `json:"category"`
	ImageCaption      string          `json:"imageCaption"`
	ComplaintText     string          `json:"complaintText"`
	Location          string          `json:"location"`
	AIConfidence      Confidence      `json:"aiConfidence"`
	Tags              []string        `json:"tags"`
	Language          string          `json:"language"`
}

// Response is the envelope returned for every analysis request.
type Response struct {
	Success    bool                  `json:"success"`
	AnalysisID string                `json:"analysisId"`
	Data       *ClassificationResult `json:"data"`
	Error      string                `json:"error,omitempty"`
}

// Request is one complaint submission. Image and audio arrive either as raw
// bytes or as encoded strings (data URL, bare base64 or a file path).
type Request struct {
	ImageData string `json:"imageData,omitempty"`
	AudioData string `json:"audioData,omitempty"`
	Text      string `json:"text,omitempty"`
	Location  string `json:"location,omitempty"`

	Image []byte `json:"-"`
	Audio []byte `json:"-"`
}

// HasImage reports whether an image was supplied in any form.
func (r *Request) HasImage() bool {
	return len(r.Image) > 0 || r.ImageData != ""
}

// HasAudio reports whether audio was supplied in any form.
func (r *Request) HasAudio() bool {
	return len(r.Audio) > 0 || r.AudioData != ""
}
