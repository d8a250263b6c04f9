package model

// ImageFile is an image selected for analysis.
// Data is the raw file content and is never persisted.
type ImageFile struct {
	Name     string `json:"name"`
	Path     string `json:"path,omitempty"`
	MIMEType string `json:"type"`
	Data     []byte `json:"-"`
	Size     int64  `json:"size"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// AnalysisResult is the outcome of analyzing one image.
type AnalysisResult struct {
	EnrichedResult *EnrichedResult `json:"enrichedResult,omitempty"`
	Image          ImageFile       `json:"image"`
	RawResult      string          `json:"result"`
	Timestamp      string          `json:"timestamp"`
}

// Totals returns the precomputed totals, or zero totals when absent.
func (r AnalysisResult) Totals() TotalNutrition {
	if r.EnrichedResult == nil || r.EnrichedResult.TotalNutrition == nil {
		return TotalNutrition{}
	}
	return *r.EnrichedResult.TotalNutrition
}

// Foods returns the enriched foods, or nil when absent.
func (r AnalysisResult) Foods() []EnrichedFood {
	if r.EnrichedResult == nil {
		return nil
	}
	return r.EnrichedResult.Foods
}
