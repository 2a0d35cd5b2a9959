package trajectory

import (
	"bufio"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/arclearn/loanbench/internal/config"
)

// Store holds the loaded task set. Records are immutable after Load; the
// store is safe for concurrent reads.
type Store struct {
	name    string
	items   []Trajectory
	byID    map[string]int
	skipped int
}

// rawRow is one JSONL record before field mapping. Keys vary between dataset
// exports, so everything lands in a generic map first.
type rawRow map[string]json.RawMessage

// Load reads a JSONL task set, applying the configured field mapping. Rows
// that cannot be parsed or that lack a prompt are skipped, not fatal; the
// skip count is kept for reporting. When split is non-empty, rows carrying a
// different "split" value are filtered out.
func Load(path string, name string, format config.Format, split string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening task set %s: %w", path, err)
	}
	defer f.Close()

	s := &Store{name: name, byID: make(map[string]int)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var row rawRow
		if err := json.Unmarshal(line, &row); err != nil {
			s.skipped++
			continue
		}
		if split != "" {
			if rowSplit := stringField(row, "split"); rowSplit != "" && rowSplit != split {
				continue
			}
		}
		traj, ok := mapRow(row, format, lineNo)
		if !ok {
			s.skipped++
			continue
		}
		s.byID[traj.ID] = len(s.items)
		s.items = append(s.items, traj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading task set %s: %w", path, err)
	}
	return s, nil
}

func mapRow(row rawRow, format config.Format, lineNo int) (Trajectory, bool) {
	traj := Trajectory{
		ID:             stringField(row, "id"),
		Prompt:         stringField(row, format.PromptKey),
		FailedResponse: stringField(row, format.ResponseKey),
		FailureType:    stringField(row, format.FailureTypeKey),
		PriorityScore:  floatField(row, "priority_score"),
	}
	if traj.Prompt == "" {
		return Trajectory{}, false
	}
	if traj.ID == "" {
		traj.ID = fmt.Sprintf("line-%d", lineNo)
	}
	traj.BusinessImpactCost = floatField(row, "business_impact_cost")
	traj.MCPServerCalls = callCount(row, "mcp_server_calls")
	return traj, true
}

func stringField(row rawRow, key string) string {
	raw, ok := row[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func floatField(row rawRow, key string) float64 {
	raw, ok := row[key]
	if !ok {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0
	}
	return f
}

// callCount accepts either a plain count or the raw list of recorded calls,
// depending on the dataset export version.
func callCount(row rawRow, key string) int {
	raw, ok := row[key]
	if !ok {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var calls []json.RawMessage
	if err := json.Unmarshal(raw, &calls); err == nil {
		return len(calls)
	}
	return 0
}

func (s *Store) Name() string { return s.name }

func (s *Store) Len() int { return len(s.items) }

// Skipped reports how many rows were dropped while loading.
func (s *Store) Skipped() int { return s.skipped }

func (s *Store) All() []Trajectory { return s.items }

func (s *Store) ByID(id string) (Trajectory, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Trajectory{}, false
	}
	return s.items[i], true
}

// TypeStats summarizes the trajectories sharing one failure type.
type TypeStats struct {
	Count          int
	MeanPriority   float64
	MeanImpactCost float64
}

// Stats groups the task set by failure type. Types with no examples are
// absent from the result.
func (s *Store) Stats() map[string]TypeStats {
	type accum struct {
		count    int
		priority float64
		cost     float64
	}
	byType := map[string]*accum{}
	for _, t := range s.items {
		a, ok := byType[t.FailureType]
		if !ok {
			a = &accum{}
			byType[t.FailureType] = a
		}
		a.count++
		a.priority += t.PriorityScore
		a.cost += t.BusinessImpactCost
	}
	stats := make(map[string]TypeStats, len(byType))
	for ft, a := range byType {
		stats[ft] = TypeStats{
			Count:          a.count,
			MeanPriority:   a.priority / float64(a.count),
			MeanImpactCost: a.cost / float64(a.count),
		}
	}
	return stats
}
