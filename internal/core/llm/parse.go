package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/labreport-import/internal/common"
)

// ResultValue holds a row's result whether the model sent a string or a number.
type ResultValue string

func (r *ResultValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ResultValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("result is neither string nor number: %w", err)
	}
	*r = ResultValue(n.String())
	return nil
}

func (r ResultValue) String() string { return string(r) }

// ExtractJSONObject returns the text from the first '{' to the last '}'.
func ExtractJSONObject(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

// ParseReply pulls the JSON payload out of a model reply, validates it and
// decodes it. Rows that break the schema are dropped and the rest kept; a
// payload that cannot be repaired that way wraps common.ErrMalformedReply.
func ParseReply(reply string) (LabReply, error) {
	payload, ok := ExtractJSONObject(reply)
	if !ok {
		return LabReply{}, malformed("no json object in reply", nil)
	}
	raw := []byte(payload)
	var dropped []string
	if err := ValidateLabReply(raw); err != nil {
		cleaned, d, sErr := SanitizeRows(raw)
		if sErr != nil {
			return LabReply{}, malformed("schema validation failed", errors.Join(err, sErr))
		}
		if vErr := ValidateLabReply(cleaned); vErr != nil {
			return LabReply{}, malformed("schema validation failed", vErr)
		}
		raw, dropped = cleaned, d
	}
	var out LabReply
	if err := json.Unmarshal(raw, &out); err != nil {
		return LabReply{}, malformed("decode reply", err)
	}
	out.Dropped = dropped
	return out, nil
}

// SanitizeRows removes rows without a usable name or result and nulls out
// non-string optional fields. It returns the rewritten payload and a short
// description of every dropped row.
func SanitizeRows(raw []byte) ([]byte, []string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}
	rows, ok := m["rows"].([]any)
	if !ok {
		return nil, nil, errors.New("sanitize: rows is not an array")
	}
	var dropped []string
	kept := make([]any, 0, len(rows))
	for i, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("row %d: not an object", i))
			continue
		}
		name, _ := row["name"].(string)
		if strings.TrimSpace(name) == "" {
			dropped = append(dropped, fmt.Sprintf("row %d: no name", i))
			continue
		}
		switch row["result"].(type) {
		case string, float64:
		default:
			dropped = append(dropped, fmt.Sprintf("row %d (%s): no result", i, name))
			continue
		}
		for _, k := range []string{"unit", "reference"} {
			if _, isStr := row[k].(string); !isStr {
				delete(row, k)
			}
		}
		kept = append(kept, row)
	}
	m["rows"] = kept
	if d, ok := m["date"]; ok {
		if _, isStr := d.(string); !isStr {
			delete(m, "date")
		}
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("sanitize: encode: %w", err)
	}
	return out, dropped, nil
}

func malformed(msg string, cause error) error {
	return common.NewAppError("MALFORMED_REPLY", msg, errors.Join(common.ErrMalformedReply, cause))
}

// NormalizeDecimal reads a result such as "5,5", "24.67" or "148*" as a
// number. Comparator results ("<0.5") and ranges are rejected.
func NormalizeDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "*↑↓ ")
	if s == "" || strings.ContainsAny(s, "<>≤≥") {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.Contains(s, "-") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
