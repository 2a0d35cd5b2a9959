package reward

import "strings"

// Component weights for the holistic quality score.
const (
	professionalismWeight = 0.4
	completenessWeight    = 0.4
	concisenessWeight     = 0.2
)

// echoOverlapLimit is the prompt/response token overlap above which a
// response is treated as a copy of the prompt and its quality capped.
const (
	echoOverlapLimit = 0.8
	echoQualityCap   = 0.2
)

// improvementQuality combines tone, disclosure completeness and a
// conciseness penalty into one [0,1] score. A response that mostly echoes
// the prompt is capped low regardless of the components: copying the
// question back scores no credit for answering it.
func (e *Engine) improvementQuality(prompt, resp string) float64 {
	professionalism := detectInappropriateTone(resp)
	completeness := detectMissingDisclosures(resp)
	conciseness := e.conciseness(resp)

	quality := professionalism*professionalismWeight +
		completeness*completenessWeight +
		conciseness*concisenessWeight

	if tokenOverlap(prompt, resp) >= echoOverlapLimit && quality > echoQualityCap {
		quality = echoQualityCap
	}
	return clamp01(quality)
}

// conciseness is 1.0 inside the expected length window and falls off
// linearly outside it.
func (e *Engine) conciseness(resp string) float64 {
	n := len([]rune(resp))
	min, max := e.minChars, e.maxChars
	switch {
	case n < min:
		return float64(n) / float64(min)
	case n > max:
		return float64(max) / float64(n)
	default:
		return 1.0
	}
}

// tokenOverlap is the fraction of response tokens that also appear in the
// prompt. 1.0 means every response token came from the prompt.
func tokenOverlap(prompt, resp string) float64 {
	respTokens := strings.Fields(resp)
	if len(respTokens) == 0 {
		return 0
	}
	promptSet := make(map[string]struct{})
	for _, tok := range strings.Fields(prompt) {
		promptSet[tok] = struct{}{}
	}
	shared := 0
	for _, tok := range respTokens {
		if _, ok := promptSet[tok]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(respTokens))
}
