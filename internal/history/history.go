package history

// Entry is one historical observation of a course's world record. Entries
// are immutable once appended.
type Entry struct {
	// Value is the record time in milliseconds.
	Value int64 `json:"value"`

	// HolderID identifies the player holding the record.
	HolderID string `json:"holderId"`

	// ObservedAt is the client-side capture time in milliseconds since the
	// Unix epoch. Every course in one batch response shares the same
	// timestamp; observation time is fetch-completion time, not true change
	// time.
	ObservedAt int64 `json:"observedAt"`
}

// History maps a normalized course ID to its record entries in insertion
// order. Entries are never removed or reordered, and no two consecutive
// entries for a course share the same Value.
type History map[string][]Entry

// Observation is one course's current record as reported by the upstream
// API.
type Observation struct {
	CourseID   string
	Value      int64
	HolderID   string
	ObservedAt int64
}

// Merge appends one Entry per observation whose value differs from the last
// recorded value for that course; a course with no prior entries always gets
// its first observation appended. Comparison is exact, record times are
// integral. Merge never touches existing entries. It mutates h in place and
// returns the number of entries appended.
func Merge(h History, observations []Observation) int {
	appended := 0
	for _, obs := range observations {
		entries := h[obs.CourseID]
		if len(entries) > 0 && entries[len(entries)-1].Value == obs.Value {
			continue
		}
		h[obs.CourseID] = append(entries, Entry{
			Value:      obs.Value,
			HolderID:   obs.HolderID,
			ObservedAt: obs.ObservedAt,
		})
		appended++
	}
	return appended
}
