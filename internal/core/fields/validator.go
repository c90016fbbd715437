package fields

import "github.com/joseph-ayodele/labreport-import/constants"

// Validator is the acceptance gate for every numeric candidate.
type Validator struct {
	byKey map[constants.CanonicalKey]*Field
}

func NewValidator() *Validator {
	return &Validator{byKey: byKey}
}

// Valid reports whether v is plausible for key. Keys without a registered
// range accept any value.
func (v *Validator) Valid(key constants.CanonicalKey, val float64) bool {
	f, ok := v.byKey[key]
	if !ok || f.Range == nil {
		return true
	}
	return f.Range.Contains(val)
}

// Floor returns the lower bound of key's range, if one is registered.
func (v *Validator) Floor(key constants.CanonicalKey) (float64, bool) {
	f, ok := v.byKey[key]
	if !ok || f.Range == nil {
		return 0, false
	}
	return f.Range.Min, true
}
