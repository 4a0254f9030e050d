package inference

import "fmt"

// PipelineState is one step of the per-upload state machine. Transitions are
// strictly linear with no back-edges.
type PipelineState string

const (
	StateReceived       PipelineState = "RECEIVED"
	StateNormalized     PipelineState = "NORMALIZED"
	StateFeaturized     PipelineState = "FEATURIZED"
	StateScored         PipelineState = "SCORED"
	StateClassified     PipelineState = "CLASSIFIED"
	StateMetricsDerived PipelineState = "METRICS_DERIVED"
	StatePersisted      PipelineState = "PERSISTED"
	StateSummarized     PipelineState = "SUMMARIZED"
	StateFailed         PipelineState = "FAILED"
)

var stateOrder = map[PipelineState]int{
	StateReceived:       0,
	StateNormalized:     1,
	StateFeaturized:     2,
	StateScored:         3,
	StateClassified:     4,
	StateMetricsDerived: 5,
	StatePersisted:      6,
	StateSummarized:     7,
}

// failableStates are the only states from which FAILED may be entered: once
// scoring has fully succeeded the request can no longer fail outright, only
// report partial persistence.
var failableStates = map[PipelineState]bool{
	StateReceived:   true,
	StateNormalized: true,
	StateFeaturized: true,
	StateScored:     true,
}

// UploadJob tracks one dataset's progress through the pipeline.
type UploadJob struct {
	state PipelineState
}

// NewUploadJob creates a job in the RECEIVED state.
func NewUploadJob() *UploadJob {
	return &UploadJob{state: StateReceived}
}

// State returns the current state.
func (j *UploadJob) State() PipelineState { return j.state }

// Advance moves the job to the next state. Skipping or reversing states is a
// programming error and is rejected.
func (j *UploadJob) Advance(next PipelineState) error {
	cur, ok := stateOrder[j.state]
	if !ok {
		return fmt.Errorf("cannot advance from terminal state %s", j.state)
	}
	want, ok := stateOrder[next]
	if !ok {
		return fmt.Errorf("unknown pipeline state %s", next)
	}
	if want != cur+1 {
		return fmt.Errorf("illegal transition %s -> %s", j.state, next)
	}
	j.state = next
	return nil
}

// Fail moves the job to FAILED. Only permitted before classification work has
// begun; later failures must surface as partial persistence instead.
func (j *UploadJob) Fail() error {
	if !failableStates[j.state] {
		return fmt.Errorf("cannot fail from state %s", j.state)
	}
	j.state = StateFailed
	return nil
}

// Terminal reports whether the job reached SUMMARIZED or FAILED.
func (j *UploadJob) Terminal() bool {
	return j.state == StateSummarized || j.state == StateFailed
}
