package xendit

import (
	"paygate/internal/gateway"
	"paygate/internal/transaction"
)

var paymentStatuses = gateway.CodeTable{
	"SUCCEEDED": {Status: transaction.StatusApproved, Message: "Payment succeeded"},
	"PENDING":   {Status: transaction.StatusPending, Message: "Payment pending"},
	"FAILED":    {Status: transaction.StatusFailed, Message: "Payment failed"},
	"EXPIRED":   {Status: transaction.StatusCanceled, Message: "Payment expired"},
	"CANCELED":  {Status: transaction.StatusCanceled, Message: "Payment canceled"},
}
