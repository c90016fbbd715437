package server

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/entity"
)

const dateLayout = "2006-01-02"

// ResultView is the wire shape of an ExtractionResult shared by the gRPC,
// HTTP and CLI surfaces.
type ResultView struct {
	ReportDate        string             `json:"report_date"`
	Values            map[string]float64 `json:"values"`
	UnrecognizedItems []string           `json:"unrecognized_items"`
	Strategy          string             `json:"strategy"`
}

func NewResultView(res entity.ExtractionResult) ResultView {
	v := ResultView{
		Values:            make(map[string]float64, len(res.Values)),
		UnrecognizedItems: append([]string{}, res.UnrecognizedItems...),
		Strategy:          string(res.Strategy),
	}
	if !res.ReportDate.IsZero() {
		v.ReportDate = res.ReportDate.Format(dateLayout)
	}
	for k, x := range res.Values {
		v.Values[string(k)] = x
	}
	return v
}

// ResultToStruct encodes res as a protobuf Struct.
func ResultToStruct(res entity.ExtractionResult) (*structpb.Struct, error) {
	view := NewResultView(res)
	values := make(map[string]any, len(view.Values))
	for k, x := range view.Values {
		values[k] = x
	}
	items := make([]any, 0, len(view.UnrecognizedItems))
	for _, it := range view.UnrecognizedItems {
		items = append(items, it)
	}
	return structpb.NewStruct(map[string]any{
		"report_date":        view.ReportDate,
		"values":             values,
		"unrecognized_items": items,
		"strategy":           view.Strategy,
	})
}

// ResultFromStruct decodes what ResultToStruct produced. Unknown value keys
// are rejected.
func ResultFromStruct(st *structpb.Struct) (entity.ExtractionResult, error) {
	res := entity.NewExtractionResult()
	if st == nil {
		return res, fmt.Errorf("empty result")
	}
	f := st.GetFields()
	if d := f["report_date"].GetStringValue(); d != "" {
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return res, fmt.Errorf("report_date: %w", err)
		}
		res.ReportDate = t
	}
	for k, v := range f["values"].GetStructValue().GetFields() {
		key, ok := constants.ParseKey(k)
		if !ok {
			return res, fmt.Errorf("unknown value key %q", k)
		}
		res.Values[key] = v.GetNumberValue()
	}
	for _, it := range f["unrecognized_items"].GetListValue().GetValues() {
		res.AddUnrecognized(it.GetStringValue())
	}
	if s := f["strategy"].GetStringValue(); s != "" {
		res.Strategy = constants.Strategy(s)
	}
	return res, nil
}
