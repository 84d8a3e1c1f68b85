package domain

import "time"

// EntryKind tags an interaction log entry with the gateway operation it
// belongs to and whether it records a request, a success response or an
// error. The names follow the message classes of the hosted-payment
// callback protocol.
type EntryKind string

const (
	KindAuthorizeRequest          EntryKind = "AuthorizeRequest"
	KindAuthorizedResponse        EntryKind = "AuthorizedResponse"
	KindAuthorizeRedirectResponse EntryKind = "AuthorizeRedirectResponse"
	KindAuthorizeError            EntryKind = "AuthorizeError"

	KindCompleteAuthorizeRequest EntryKind = "CompleteAuthorizeRequest"
	KindCompleteAuthorizeError   EntryKind = "CompleteAuthorizeError"

	KindCaptureRequest         EntryKind = "CaptureRequest"
	KindCompleteCaptureRequest EntryKind = "CompleteCaptureRequest"
	KindCapturedResponse       EntryKind = "CapturedResponse"
	KindCaptureError           EntryKind = "CaptureError"

	KindRefundRequest         EntryKind = "RefundRequest"
	KindCompleteRefundRequest EntryKind = "CompleteRefundRequest"
	KindRefundedResponse      EntryKind = "RefundedResponse"
	KindRefundError           EntryKind = "RefundError"

	KindVoidRequest         EntryKind = "VoidRequest"
	KindCompleteVoidRequest EntryKind = "CompleteVoidRequest"
	KindVoidedResponse      EntryKind = "VoidedResponse"
	KindVoidError           EntryKind = "VoidError"
)

// SuccessResponseKinds lists the entry kinds that record a successful
// gateway response. Reference recovery scans only these.
var SuccessResponseKinds = []EntryKind{
	KindAuthorizedResponse,
	KindCapturedResponse,
	KindRefundedResponse,
	KindVoidedResponse,
}

// IsSuccessResponse reports whether the kind records a successful gateway
// response, as opposed to a request or an error.
func (k EntryKind) IsSuccessResponse() bool {
	for _, s := range SuccessResponseKinds {
		if k == s {
			return true
		}
	}
	return false
}

// InteractionEntry is one immutable audit record of a gateway exchange.
// Entries are append-only: once written they are never mutated or deleted.
// Reference carries the gateway-assigned transaction reference on success
// responses; Payload is diagnostic content only and is never used to drive
// orchestration decisions.
type InteractionEntry struct {
	ID                int64
	PaymentIdentifier string
	Kind              EntryKind
	Reference         string
	Payload           string
	CreatedAt         time.Time
}

func NewInteractionEntry(paymentIdentifier string, kind EntryKind, reference, payload string) *InteractionEntry {
	return &InteractionEntry{
		PaymentIdentifier: paymentIdentifier,
		Kind:              kind,
		Reference:         reference,
		Payload:           payload,
		CreatedAt:         time.Now(),
	}
}
