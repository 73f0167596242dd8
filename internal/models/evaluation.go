package models

import "math"

// Entry is the rating, derived score and note for one rubric item.
// An entry created only by a note has no level and contributes nothing.
type Entry struct {
	Level       RatingLevel `json:"level,omitempty"`
	ActualScore float64     `json:"actualScore"`
	Notes       string      `json:"notes"`
}

func (e Entry) Rated() bool {
	return e.Level != ""
}

// Evaluation maps item ids to entries. Items without an entry are unrated.
// The mutators never modify the receiver; each returns a fresh map so callers
// can compare old and new state.
type Evaluation map[string]Entry

// Rate records level for item, keeping any existing note.
func (e Evaluation) Rate(item Item, level RatingLevel) Evaluation {
	next := e.Clone()
	entry := next[item.ID]
	entry.Level = level
	entry.ActualScore = item.Score(level)
	next[item.ID] = entry
	return next
}

// SetNote replaces the note for id, creating an unrated entry when needed.
func (e Evaluation) SetNote(id, text string) Evaluation {
	next := e.Clone()
	entry := next[id]
	entry.Notes = text
	next[id] = entry
	return next
}

func (e Evaluation) Clone() Evaluation {
	next := make(Evaluation, len(e)+1)
	for k, v := range e {
		next[k] = v
	}
	return next
}

// RatedCount returns how many entries carry a rating.
func (e Evaluation) RatedCount() int {
	n := 0
	for _, entry := range e {
		if entry.Rated() {
			n++
		}
	}
	return n
}

// Round2 rounds half away from zero to two decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
