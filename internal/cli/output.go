package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case AuthResult:
		o.printAuthResult(v)
	case Plans:
		o.printPlans(v)
	case RemoveResult:
		o.printRemoveResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
type Account struct {
	ID         string    `json:"id"`
	Username   string    `json:"username,omitempty"`
	AuthMethod string    `json:"auth_method"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthResult combines account and token
type AuthResult struct {
	Account      Account   `json:"account"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Plans response type
type Plans struct {
	AccountID string   `json:"account_id"`
	Plans     []string `json:"plans"`
}

// RemoveResult response type
type RemoveResult struct {
	AccountID string   `json:"account_id"`
	Plans     []string `json:"plans"`
	Removed   int      `json:"removed"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printAccount(a Account) {
	name := a.Username
	if name == "" {
		name = "(google account)"
	}
	_, _ = fmt.Fprintf(o.w, "Account: %s (%s)\n", name, a.ID)
	_, _ = fmt.Fprintf(o.w, "Sign-in: %s\n", a.AuthMethod)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printAccount(a.Account)
	_, _ = fmt.Fprintf(o.w, "Session expires: %s\n", a.ExpiresAt.Local().Format(time.RFC1123))
}

func (o *Output) printPlans(p Plans) {
	if len(p.Plans) == 0 {
		_, _ = fmt.Fprintln(o.w, "No plans yet.")
		return
	}
	for i, plan := range p.Plans {
		_, _ = fmt.Fprintf(o.w, "%2d. %s\n", i+1, plan)
	}
}

func (o *Output) printRemoveResult(r RemoveResult) {
	_, _ = fmt.Fprintf(o.w, "Removed %d matching plan(s)\n", r.Removed)
	o.printPlans(Plans{AccountID: r.AccountID, Plans: r.Plans})
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
}
