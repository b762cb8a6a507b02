package conversation

// Record is the plain serializable form of a State. Field names are part of the
// exported-state contract.
type Record struct {
	TurnCount     int               `json:"turn_count"`
	Messages      []Message         `json:"messages"`
	IsComplete    bool              `json:"is_complete"`
	Requirements  map[string]any    `json:"requirements"`
	Layer0Context InitiatingContext `json:"layer0_context"`
}

// ToRecord snapshots the state.
func (s *State) ToRecord() Record {
	return Record{
		TurnCount:     s.turnCount,
		Messages:      s.MessagesForTransport(),
		IsComplete:    s.isComplete,
		Requirements:  s.requirements,
		Layer0Context: s.initiating,
	}
}

// FromRecord builds a State from rec. Fields absent from rec keep their zero values.
// Turn limits are not part of the record and must be supplied.
func FromRecord(rec Record, limits TurnLimits) *State {
	s := New(limits, rec.Layer0Context)
	s.turnCount = rec.TurnCount
	if rec.Messages != nil {
		s.messages = make([]Message, len(rec.Messages))
		copy(s.messages, rec.Messages)
	}
	s.isComplete = rec.IsComplete
	s.requirements = rec.Requirements
	return s
}
