// Package metrics reduces per-example reward records into run summaries.
// Reduction is single-threaded and order-independent so the same records
// always produce the same summary.
package metrics

import (
	"fmt"
	"sort"

	"github.com/arclearn/loanbench/internal/reward"
)

// Group holds arithmetic means over one set of records.
type Group struct {
	Count              int     `json:"count"`
	MeanReward         float64 `json:"mean_reward"`
	MeanAvoided        float64 `json:"mean_avoided"`
	MeanQuality        float64 `json:"mean_quality"`
	MeanSampleWeight   float64 `json:"mean_sample_weight"`
	MeanImpactCost     float64 `json:"mean_impact_cost"`
	MeanResponseLength float64 `json:"mean_response_length"`
	MeanMCPCalls       float64 `json:"mean_mcp_calls"`
}

// Summary is the reduced form of one evaluation run: means over all records
// plus means per failure type. Failure types with zero examples are simply
// absent, never emitted as NaN groups.
type Summary struct {
	Overall       Group            `json:"overall"`
	ByFailureType map[string]Group `json:"by_failure_type"`
}

type accum struct {
	count   int
	reward  float64
	avoided float64
	quality float64
	weight  float64
	cost    float64
	length  float64
	calls   float64
}

func (a *accum) add(r reward.Record) {
	a.count++
	a.reward += r.FinalReward
	a.avoided += r.AvoidedFailure
	a.quality += r.ImprovementQuality
	a.weight += r.SampleWeight
	a.cost += r.BusinessImpactCost
	a.length += float64(r.ResponseLength)
	a.calls += float64(r.MCPServerCalls)
}

func (a *accum) group() Group {
	n := float64(a.count)
	return Group{
		Count:              a.count,
		MeanReward:         a.reward / n,
		MeanAvoided:        a.avoided / n,
		MeanQuality:        a.quality / n,
		MeanSampleWeight:   a.weight / n,
		MeanImpactCost:     a.cost / n,
		MeanResponseLength: a.length / n,
		MeanMCPCalls:       a.calls / n,
	}
}

// Summarize reduces records into per-failure-type and overall means.
func Summarize(records []reward.Record) Summary {
	summary := Summary{ByFailureType: map[string]Group{}}
	if len(records) == 0 {
		return summary
	}

	overall := &accum{}
	byType := map[string]*accum{}
	for _, r := range records {
		overall.add(r)
		a, ok := byType[r.FailureType]
		if !ok {
			a = &accum{}
			byType[r.FailureType] = a
		}
		a.add(r)
	}

	summary.Overall = overall.group()
	for ft, a := range byType {
		summary.ByFailureType[ft] = a.group()
	}
	return summary
}

// Flatten converts a summary into the flat metric-name to value mapping the
// monitoring sink accepts. Keys are stable ("overall/mean_reward",
// "<failure_type>/count", ...).
func Flatten(s Summary) map[string]float64 {
	out := make(map[string]float64)
	flattenGroup(out, "overall", s.Overall)
	types := make([]string, 0, len(s.ByFailureType))
	for ft := range s.ByFailureType {
		types = append(types, ft)
	}
	sort.Strings(types)
	for _, ft := range types {
		flattenGroup(out, ft, s.ByFailureType[ft])
	}
	return out
}

func flattenGroup(out map[string]float64, prefix string, g Group) {
	out[fmt.Sprintf("%s/count", prefix)] = float64(g.Count)
	out[fmt.Sprintf("%s/mean_reward", prefix)] = g.MeanReward
	out[fmt.Sprintf("%s/mean_avoided", prefix)] = g.MeanAvoided
	out[fmt.Sprintf("%s/mean_quality", prefix)] = g.MeanQuality
	out[fmt.Sprintf("%s/mean_sample_weight", prefix)] = g.MeanSampleWeight
	out[fmt.Sprintf("%s/mean_impact_cost", prefix)] = g.MeanImpactCost
	out[fmt.Sprintf("%s/mean_response_length", prefix)] = g.MeanResponseLength
	out[fmt.Sprintf("%s/mean_mcp_calls", prefix)] = g.MeanMCPCalls
}
