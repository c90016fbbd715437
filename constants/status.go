package constants

// OutcomeStatus tags the result of one extraction strategy.
type OutcomeStatus string

const (
	OutcomeHasValues OutcomeStatus = "HAS_VALUES" // at least one validated value
	OutcomeNoValues  OutcomeStatus = "NO_VALUES"  // ran fine, nothing validated
	OutcomeError     OutcomeStatus = "ERROR"      // failed; diagnostics recorded
)

// Strategy names an extraction path.
type Strategy string

const (
	StrategyVision Strategy = "vision"
	StrategyOCR    Strategy = "ocr"
	StrategyNone   Strategy = "none"
)
