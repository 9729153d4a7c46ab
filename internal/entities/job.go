package entities

// JobRequest is everything needed to submit one transcoding job. The
// encoding profile itself is fixed and lives in the mediaconvert package.
type JobRequest struct {
	Role        string            `json:"role"`
	JobTemplate string            `json:"job_template"`
	Queue       string            `json:"queue,omitempty"`
	InputURI    string            `json:"input_uri"`
	Destination string            `json:"destination"`
	Token       string            `json:"client_request_token"`
	Metadata    map[string]string `json:"user_metadata,omitempty"`
}
