package analysis

import (
	"fmt"
	"strings"
)

// Normalize turns a raw classification into the canonical history record.
// id, filename dan timestamp datang dari pipeline, bukan dari model.
func Normalize(raw Classification, id AnalysisID, filename string, timestampMS int64) *Analysis {
	healthy := strings.EqualFold(raw.Status, "healthy")

	disease := raw.DiseaseName
	if disease == "" {
		disease = "None"
	}
	if healthy {
		disease = "Healthy"
	}

	var readable string
	if healthy {
		readable = fmt.Sprintf("%s (Healthy)", raw.LeafName)
	} else {
		readable = fmt.Sprintf("%s - %s", raw.LeafName, disease)
	}

	// Frontend renders reasoning as markdown; prepend severity there unless the
	// model already mentioned it in the text.
	reasoning := raw.Reasoning
	if raw.Severity != "" && !strings.Contains(reasoning, "Severity") {
		reasoning = fmt.Sprintf("**Severity:** %s\n\n%s", raw.Severity, reasoning)
	}

	return &Analysis{
		ID:              id,
		Filename:        filename,
		DiseaseName:     disease,
		DiseaseReadable: readable,
		IsHealthy:       healthy,
		Confidence:      raw.Confidence, // passed through verbatim, no clamping
		Reasoning:       reasoning,
		Severity:        raw.Severity,
		Timestamp:       timestampMS,
	}
}
