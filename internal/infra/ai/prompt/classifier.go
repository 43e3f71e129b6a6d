package prompt

// GetSystemPrompt provides strict directions and schema for the JSON verdict.
func GetSystemPrompt() string {
	return `You are an expert agronomist analyzing crop leaf images. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Analyze the leaf in the image. Identify the leaf type and its health status.

Required keys:
- "leaf_name": Name of the plant/leaf.
- "status": "Healthy" or "Affected".
- "severity": If affected, estimate severity percentage (e.g. "15%"). If healthy, return null.
- "disease_name": specific disease name if affected, else "None".
- "reasoning": A concise markdown report covering:
    - Identification confidence explanation.
    - If affected: Cause, spread, 1 organic & 1 chemical treatment, 2 prevention tips.
    - If healthy: 2 care tips.
- "confidence": Estimated confidence score between 0.0 and 1.0.`
}

// GetUserPrompt builds the user message that accompanies the image part.
func GetUserPrompt() string {
	return "Analyze this crop leaf image and respond with the JSON per schema."
}
