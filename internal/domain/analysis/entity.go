package analysis

// AnalysisID tipe untuk record history
type AnalysisID string

// Aggregate Root: Analysis — satu entry di history, immutable setelah dibuat
type Analysis struct {
	ID              AnalysisID `json:"id"`
	Filename        string     `json:"filename"`
	DiseaseName     string     `json:"disease_name"`
	DiseaseReadable string     `json:"disease_readable"`
	IsHealthy       bool       `json:"is_healthy"`
	Confidence      float64    `json:"confidence"`
	Reasoning       string     `json:"reasoning"`
	Severity        string     `json:"severity,omitempty"`
	Timestamp       int64      `json:"timestamp"` // epoch millis
}

// Classification is the raw verdict from the vision model. It only exists
// between the gateway call and normalization; it is never persisted as-is.
type Classification struct {
	LeafName    string  `json:"leaf_name"`
	Status      string  `json:"status"` // "Healthy" | "Affected" | free text
	Severity    string  `json:"severity,omitempty"`
	DiseaseName string  `json:"disease_name"`
	Reasoning   string  `json:"reasoning"`
	Confidence  float64 `json:"confidence"`

	// Succeeded is false when the gateway substituted the sentinel, so a real
	// "Error" diagnosis can be told apart from an AI service outage.
	Succeeded bool `json:"succeeded"`
}

// ErrorClassification is the sentinel returned when the model call fails in
// any way. The pipeline keeps going with this instead of aborting the request.
func ErrorClassification() Classification {
	return Classification{
		LeafName:    "Unknown",
		Status:      "Error",
		DiseaseName: "Error",
		Reasoning:   "Could not analyze image due to AI service error.",
		Confidence:  0.0,
		Succeeded:   false,
	}
}
