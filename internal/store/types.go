package store

// EventRecord is one processed engine event.
type EventRecord struct {
	Seq         int64  `json:"seq"`
	Flow        string `json:"flow"`
	Type        string `json:"type"`
	Source      string `json:"source,omitempty"`
	Value       string `json:"value,omitempty"`       // Selected category (select)
	Dataset     string `json:"dataset,omitempty"`     // Record set identity (replace_records)
	RecordCount int    `json:"record_count,omitempty"` // Records installed (replace_records)
	Error       string `json:"error,omitempty"`       // Handler error; empty on success
}

// NotificationRecord is one selection change delivered by the mediator.
type NotificationRecord struct {
	Seq    int64  `json:"seq"`
	Flow   string `json:"flow"`
	Origin string `json:"origin"`
	Value  string `json:"value"`
}

// FlowSummary describes one flow in the log.
type FlowSummary struct {
	Flow          string `json:"flow"`
	FirstSeq      int64  `json:"first_seq"`
	LastSeq       int64  `json:"last_seq"`
	Events        int    `json:"events"`
	Notifications int    `json:"notifications"`
}

// DatasetRecord is a stored record set snapshot, keyed by its content
// identity.
type DatasetRecord struct {
	Identity string
	Source   string
	Snapshot []byte
}
