package eureka

import (
	"paygate/internal/gateway"
	"paygate/internal/transaction"
)

// returnCodes maps exit returnCode values. An accepted financing request only
// means the credit file was opened; funds settle out of band, hence UNVERIFIED.
var returnCodes = gateway.CodeTable{
	"0": {Status: transaction.StatusUnverified, Message: "Financing request accepted, awaiting settlement"},
	"1": {Status: transaction.StatusPending, Message: "Financing request under review"},
	"2": {Status: transaction.StatusFailed, Message: "Financing request refused"},
	"3": {Status: transaction.StatusCanceled, Message: "Financing request cancelled by the customer"},
	"4": {Status: transaction.StatusFailed, Message: "Financing request abandoned: session expired"},
	"5": {Status: transaction.StatusFailed, Message: "Technical error on the financing platform"},
}
