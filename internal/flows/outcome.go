package flows

import (
	"fmt"

	"github.com/hostedpay/payflow/internal/gateway"
	"github.com/hostedpay/payflow/internal/redirect"
)

// Outcome is the ephemeral result a flow operation hands back to its
// caller. It is never persisted; the interaction log is the durable record.
type Outcome struct {
	Successful       bool
	RedirectRequired bool
	Message          string

	// Redirect tells the HTTP layer how to hand the browser to the
	// off-site gateway. Set only when RedirectRequired is true.
	Redirect *redirect.Instruction
}

func outcomeFromResult(res *gateway.Result) *Outcome {
	out := &Outcome{
		Successful:       res.Successful,
		RedirectRequired: res.RedirectRequired,
		Message:          res.Message,
	}
	if !res.Successful && !res.RedirectRequired && res.Code != "" {
		out.Message = declineMessage(res)
	}
	return out
}

func declineMessage(res *gateway.Result) string {
	return fmt.Sprintf("Error (%s): %s", res.Code, res.Message)
}
