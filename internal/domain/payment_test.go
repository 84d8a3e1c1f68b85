package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	p, err := NewPayment("order-1", 2500, "USD", "stripe")
	require.NoError(t, err)

	assert.NotEmpty(t, p.Identifier)
	assert.Equal(t, "order-1", p.OrderID)
	assert.Equal(t, int64(2500), p.AmountCents)
	assert.Equal(t, StatusCreated, p.Status)
	assert.False(t, p.CreatedAt.IsZero())
}

func TestNewPaymentValidation(t *testing.T) {
	tests := []struct {
		name     string
		orderID  string
		amount   int64
		currency string
		gateway  string
	}{
		{"missing order", "", 100, "USD", "stripe"},
		{"zero amount", "order-1", 0, "USD", "stripe"},
		{"negative amount", "order-1", -50, "USD", "stripe"},
		{"missing currency", "order-1", 100, "", "stripe"},
		{"missing gateway", "order-1", 100, "USD", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(tt.orderID, tt.amount, tt.currency, tt.gateway)
			assert.Error(t, err)
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusCreated, StatusPendingAuthorization, true},
		{StatusCreated, StatusAuthorized, true},
		{StatusCreated, StatusVoid, true},
		{StatusCreated, StatusCaptured, false},
		{StatusCreated, StatusRefunded, false},

		{StatusPendingAuthorization, StatusAuthorized, true},
		{StatusPendingAuthorization, StatusVoid, true},
		{StatusPendingAuthorization, StatusCreated, false},
		{StatusPendingAuthorization, StatusCaptured, false},

		{StatusAuthorized, StatusCaptured, true},
		{StatusAuthorized, StatusVoid, true},
		{StatusAuthorized, StatusRefunded, false},
		{StatusAuthorized, StatusCreated, false},
		{StatusAuthorized, StatusPendingAuthorization, false},

		{StatusCaptured, StatusRefunded, true},
		{StatusCaptured, StatusVoid, false},
		{StatusCaptured, StatusAuthorized, false},

		{StatusRefunded, StatusVoid, false},
		{StatusRefunded, StatusCreated, false},
		{StatusVoid, StatusAuthorized, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			p := &Payment{Status: tt.from}
			err := p.CanTransitionTo(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestIsComplete(t *testing.T) {
	assert.False(t, (&Payment{Status: StatusCreated}).IsComplete())
	assert.False(t, (&Payment{Status: StatusPendingAuthorization}).IsComplete())
	assert.True(t, (&Payment{Status: StatusAuthorized}).IsComplete())
	assert.True(t, (&Payment{Status: StatusCaptured}).IsComplete())
	assert.True(t, (&Payment{Status: StatusRefunded}).IsComplete())
	assert.False(t, (&Payment{Status: StatusVoid}).IsComplete())
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, (&Payment{Status: StatusRefunded}).IsTerminal())
	assert.True(t, (&Payment{Status: StatusVoid}).IsTerminal())
	assert.False(t, (&Payment{Status: StatusAuthorized}).IsTerminal())
	assert.False(t, (&Payment{Status: StatusCaptured}).IsTerminal())
}

func TestIsSuccessResponse(t *testing.T) {
	assert.True(t, KindAuthorizedResponse.IsSuccessResponse())
	assert.True(t, KindCapturedResponse.IsSuccessResponse())
	assert.True(t, KindRefundedResponse.IsSuccessResponse())
	assert.True(t, KindVoidedResponse.IsSuccessResponse())
	assert.False(t, KindAuthorizeRequest.IsSuccessResponse())
	assert.False(t, KindAuthorizeError.IsSuccessResponse())
	assert.False(t, KindAuthorizeRedirectResponse.IsSuccessResponse())
}
