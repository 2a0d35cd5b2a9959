package trajectory

// Failure types documented in the labeled dataset. The reward engine keys its
// detector table on these; anything else is rejected as unsupported.
const (
	DiscriminatoryLanguage  = "discriminatory_language"
	InaccurateRates         = "inaccurate_rates"
	MissingDisclosures      = "missing_disclosures"
	InappropriateTone       = "inappropriate_tone"
	InsufficientInformation = "insufficient_information"
)

// FailureTypes lists every known failure type in a stable order.
var FailureTypes = []string{
	DiscriminatoryLanguage,
	InaccurateRates,
	MissingDisclosures,
	InappropriateTone,
	InsufficientInformation,
}

func KnownFailureType(s string) bool {
	for _, t := range FailureTypes {
		if s == t {
			return true
		}
	}
	return false
}

// Trajectory is one labeled failure example: a user prompt, the response that
// failed, and the business annotation attached at data-preparation time.
// Immutable once loaded.
type Trajectory struct {
	ID                 string
	Prompt             string
	FailedResponse     string
	FailureType        string
	PriorityScore      float64
	BusinessImpactCost float64
	MCPServerCalls     int
}
