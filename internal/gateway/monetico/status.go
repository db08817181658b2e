package monetico

import (
	"paygate/internal/gateway"
	"paygate/internal/transaction"
)

const (
	returnCodeTest      = "payetest"
	returnCodePayment   = "paiement"
	returnCodeCancelled = "Annulation"
)

var returnCodes = gateway.CodeTable{
	returnCodeTest:      {Status: transaction.StatusApproved, Message: "Payment accepted (test environment)"},
	returnCodePayment:   {Status: transaction.StatusApproved, Message: "Payment accepted"},
	returnCodeCancelled: {Status: transaction.StatusFailed, Message: "Payment refused"},
}

// refusalReasons details motifrefus values sent along an Annulation.
var refusalReasons = gateway.CodeTable{
	"Appel Phonie": {Status: transaction.StatusFailed, Message: "The bank requires additional information"},
	"Refus":        {Status: transaction.StatusFailed, Message: "The bank refused the authorization request"},
	"Interdit":     {Status: transaction.StatusFailed, Message: "The bank refused the authorization request, card is blocked"},
	"filtrage":     {Status: transaction.StatusFailed, Message: "The payment was blocked by the fraud filter"},
	"scoring":      {Status: transaction.StatusFailed, Message: "The payment was blocked by the scoring module"},
	"3DSecure":     {Status: transaction.StatusFailed, Message: "The 3-D Secure authentication failed"},
}
