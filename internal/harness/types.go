package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	// IDs are the ids of the final traversers, in order.
	IDs []string `json:"ids"`

	// Residual is the residual pipeline after pushdown.
	Residual string `json:"residual,omitempty"`

	// Queries maps a residual anchor index to its compiled backend query.
	Queries map[int]string `json:"queries,omitempty"`

	// Explain is the explained plan (engine.Plan.Explain).
	Explain map[string]any `json:"explain,omitempty"`

	// ErrorCode is the code of the execution error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Err is the execution error, if any. An expected error does not fail
	// the scenario.
	Err error `json:"-"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		IDs:     []string{},
		Queries: make(map[int]string),
		Errors:  []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
