package domain

type OutcomeKind string

const (
	OutcomeSucceeded OutcomeKind = "succeeded"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
)

// Reason codes attached to skipped and failed outcomes.
const (
	ReasonAlreadyPresent    = "already_present"
	ReasonAlreadyRecorded   = "already_recorded"
	ReasonBadLocator        = "bad_locator"
	ReasonFetchFailed       = "fetch_failed"
	ReasonExtractFailed     = "extract_failed"
	ReasonUnreadableRecord  = "unreadable_record"
	ReasonMissingFilename   = "missing_filename"
	ReasonWrongStatus       = "wrong_status"
	ReasonUnresolvedField   = "unresolved_field"
	ReasonSourceMissing     = "source_missing"
	ReasonDestinationExists = "destination_exists"
	ReasonMoveFailed        = "move_failed"
	ReasonPersistFailed     = "persist_failed"
	ReasonNotApproved       = "not_approved"
	ReasonRecordNotFound    = "record_not_found"
)

// Outcome is the per-item result of a batch stage.
type Outcome struct {
	Subject string      `json:"subject"`
	Kind    OutcomeKind `json:"kind"`
	Reason  string      `json:"reason,omitempty"`
	Detail  string      `json:"detail,omitempty"`
	Target  string      `json:"target,omitempty"`
	Bytes   int64       `json:"bytes,omitempty"`
}

// Report aggregates the outcomes of one stage run.
type Report struct {
	Stage    string    `json:"stage"`
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
	Bytes    int64     `json:"bytes"`
}

func NewReport(stage, runID string) *Report {
	return &Report{Stage: stage, RunID: runID, Outcomes: []Outcome{}}
}

func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	if o.Kind == OutcomeSucceeded {
		r.Bytes += o.Bytes
	}
}

func (r *Report) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// LifecycleEvent describes one status transition of a record.
type LifecycleEvent struct {
	OriginalFilename  string       `json:"original_filename"`
	GeneratedFilename string       `json:"generated_filename"`
	From              RecordStatus `json:"from,omitempty"`
	To                RecordStatus `json:"to"`
	At                string       `json:"at"`
	RunID             string       `json:"run_id"`
}

// ReviewDecision is one reviewer verdict, possibly with corrected fields.
type ReviewDecision struct {
	OriginalFilename string
	Approve          bool
	Fields           Fields
}
