package llm

import (
	"encoding/json"
	"strings"
)

// BuildExtractionPrompt describes the task and the exact reply shape. known
// lists the analyte names the caller can map; the model may return others.
func BuildExtractionPrompt(known []string) string {
	parts := []string{
		"You are reading a medical laboratory report. The attached images are its pages in order.",
		"Transcribe every test result row into JSON. Return ONLY one JSON object matching the JSON Schema below, with no prose and no code fences.",
		"Use the test name exactly as printed (Russian or English). Put the measured value in 'result' as printed, keeping a decimal comma if the report uses one.",
		"Do not put the reference interval in 'result'; it belongs in 'reference'. Copy the unit into 'unit'.",
		"If a result is marked as not ready (for example 'выполняется' or 'в работе'), put that text in 'result'.",
		"If the sample collection date is printed, return it as 'date' in YYYY-MM-DD form.",
		"Skip rows without a result. Never invent values.",
	}
	if len(known) > 0 {
		parts = append(parts, "Tests of particular interest: "+strings.Join(known, ", ")+".")
	}
	parts = append(parts, "JSON Schema:\n"+mustJSON(BuildLabReplySchema()))
	return strings.Join(parts, "\n")
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
