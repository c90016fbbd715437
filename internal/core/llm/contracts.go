package llm

import "context"

// VisionClient sends one prompt plus page images to a multimodal model and
// returns the model's text reply.
type VisionClient interface {
	Complete(ctx context.Context, prompt string, images [][]byte) (string, error)
}

// LabRow is one table row as the model read it.
type LabRow struct {
	Name      string      `json:"name"`
	Result    ResultValue `json:"result"`
	Unit      string      `json:"unit,omitempty"`
	Reference string      `json:"reference,omitempty"`
}

// LabReply is the JSON document the model is asked to return.
type LabReply struct {
	Rows []LabRow `json:"rows"`
	Date string   `json:"date,omitempty"` // collection date if printed

	Dropped []string `json:"-"` // rows removed while repairing the reply
}
