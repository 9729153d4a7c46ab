package translator

type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Skip reasons.
const (
	ReasonNotCreated = "not-object-created"
	ReasonMediaType  = "media-type-not-allowed"
	ReasonDuplicate  = "duplicate"
)

// Result is what happened to one storage record.
type Result struct {
	Bucket      string  `json:"bucket"`
	Key         string  `json:"key"`
	Outcome     Outcome `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
	MediaType   string  `json:"media_type,omitempty"`
	Destination string  `json:"destination,omitempty"`
	JobID       string  `json:"job_id,omitempty"`
	Error       string  `json:"error,omitempty"`
	Err         error   `json:"-"`
}

// Report aggregates the results of one invocation in record order.
type Report struct {
	Results   []Result `json:"results"`
	Submitted int      `json:"submitted"`
	Skipped   int      `json:"skipped"`
	Failed    int      `json:"failed"`
}

func (r *Report) add(res Result) {
	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	switch res.Outcome {
	case OutcomeSubmitted:
		r.Submitted++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Results = append(r.Results, res)
}

// JobIDs returns the IDs of submitted jobs.
func (r Report) JobIDs() []string {
	ids := make([]string, 0, r.Submitted)
	for _, res := range r.Results {
		if res.Outcome == OutcomeSubmitted {
			ids = append(ids, res.JobID)
		}
	}
	return ids
}
