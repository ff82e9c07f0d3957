package queue

const (
	TypePipelineRun = "pipeline:run"
)

// PipelineRunPayload carries the recorded clip itself; jobs are short-lived
// and the clip is small enough to travel through Redis.
type PipelineRunPayload struct {
	JobID      string `json:"job_id"`
	Audio      []byte `json:"audio"`
	Filename   string `json:"filename"`
	MediaType  string `json:"media_type"`
	Synthesize bool   `json:"synthesize"`
	Voice      string `json:"voice,omitempty"`
	Source     string `json:"source,omitempty"`
	Target     string `json:"target,omitempty"`
}
