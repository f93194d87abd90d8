package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AddPlanRequest is the request body for appending a plan.
// Plan is a pointer so a missing field can be told apart from an empty plan.
type AddPlanRequest struct {
	Plan *string `json:"plan"`
}

// RemovePlanRequest is the request body for removing a plan.
// AccountID defaults to the caller.
type RemovePlanRequest struct {
	Plan      *string `json:"plan"`
	AccountID string  `json:"account_id,omitempty"`
}
