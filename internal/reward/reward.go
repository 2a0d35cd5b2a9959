// Package reward scores a generated response against one labeled failure
// trajectory. Scoring is pure and deterministic: the same (trajectory,
// response) pair always produces an identical record, in training and in
// evaluation, so the binary training signal never skews between the two.
package reward

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/arclearn/loanbench/internal/config"
	"github.com/arclearn/loanbench/internal/trajectory"
)

var (
	ErrInvalidTrajectory      = errors.New("invalid trajectory")
	ErrEmptyResponse          = errors.New("empty response")
	ErrUnsupportedFailureType = errors.New("unsupported failure type")
)

// Record is the scored outcome for one (trajectory, response) pair.
// Immutable after creation.
type Record struct {
	FinalReward        float64 `json:"final_reward"`
	SampleWeight       float64 `json:"sample_weight"`
	AvoidedFailure     float64 `json:"avoided_failure"`
	ImprovementQuality float64 `json:"improvement_quality"`
	BusinessImpactCost float64 `json:"business_impact_cost"`
	ResponseLength     int     `json:"response_length"`
	MCPServerCalls     int     `json:"mcp_server_calls"`
	FailureType        string  `json:"failure_type"`
}

// Engine computes reward records. Safe for concurrent use: it holds only
// configuration fixed at construction.
type Engine struct {
	avoidedThreshold float64
	qualityThreshold float64
	minChars         int
	maxChars         int
	detectors        map[string]detector
}

func NewEngine(cfg config.Reward) *Engine {
	return &Engine{
		avoidedThreshold: cfg.AvoidedThreshold,
		qualityThreshold: cfg.QualityThreshold,
		minChars:         cfg.ExpectedMinChars,
		maxChars:         cfg.ExpectedMaxChars,
		detectors:        detectorTable(),
	}
}

var fencePattern = regexp.MustCompile("(?s)```[a-z]*\n?|```")

// Score produces exactly one Record for the pair. Validation failures are
// returned as errors and produce no record; nothing is logged and the
// trajectory is never mutated.
func (e *Engine) Score(traj trajectory.Trajectory, response string) (Record, error) {
	if traj.FailureType == "" || traj.PriorityScore < 0 || traj.PriorityScore > 1 {
		return Record{}, ErrInvalidTrajectory
	}
	primary, ok := e.detectors[traj.FailureType]
	if !ok {
		return Record{}, ErrUnsupportedFailureType
	}
	if strings.TrimSpace(response) == "" {
		return Record{}, ErrEmptyResponse
	}

	normalized := normalize(response)

	// Every detector runs: fixing the documented failure while introducing
	// a different one forfeits full credit. The worst non-primary score
	// scales the primary detector down.
	primaryScore := primary(normalized)
	crossMin := 1.0
	for ft, det := range e.detectors {
		if ft == traj.FailureType {
			continue
		}
		if s := det(normalized); s < crossMin {
			crossMin = s
		}
	}
	avoided := clamp01(primaryScore * (0.6 + 0.4*crossMin))

	quality := e.improvementQuality(normalize(traj.Prompt), normalized)

	weight, err := SampleWeight(traj.PriorityScore)
	if err != nil {
		return Record{}, ErrInvalidTrajectory
	}

	final := 0.0
	if avoided >= e.avoidedThreshold && quality >= e.qualityThreshold {
		final = 1.0
	}

	return Record{
		FinalReward:        final,
		SampleWeight:       weight,
		AvoidedFailure:     avoided,
		ImprovementQuality: quality,
		BusinessImpactCost: traj.BusinessImpactCost,
		ResponseLength:     utf8.RuneCountInString(response),
		MCPServerCalls:     traj.MCPServerCalls,
		FailureType:        traj.FailureType,
	}, nil
}

// normalize strips markdown code fences and lowercases, so the detectors see
// the same text regardless of formatting.
func normalize(s string) string {
	s = fencePattern.ReplaceAllString(s, "")
	return strings.ToLower(strings.TrimSpace(s))
}
