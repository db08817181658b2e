package sips

import (
	"paygate/internal/gateway"
	"paygate/internal/transaction"
)

const responseCodeApproved = "00"

// responseCodes follows the Atos Sips responseCode dictionary.
var responseCodes = gateway.CodeTable{
	"00": {Status: transaction.StatusApproved, Message: "Authorisation accepted"},
	"02": {Status: transaction.StatusFailed, Message: "Authorisation request to be performed via telephone with the issuer, as the card authorisation threshold has been exceeded"},
	"03": {Status: transaction.StatusFailed, Message: "Invalid merchant contract"},
	"05": {Status: transaction.StatusFailed, Message: "Authorisation refused"},
	"11": {Status: transaction.StatusFailed, Message: "Used for differed check. The PAN is blocked"},
	"12": {Status: transaction.StatusFailed, Message: "Invalid transaction, check the request parameters"},
	"14": {Status: transaction.StatusFailed, Message: "Invalid PAN or payment mean data (ex: card security code)"},
	"17": {Status: transaction.StatusCanceled, Message: "Buyer cancellation"},
	"24": {Status: transaction.StatusFailed, Message: "Operation not authorized. The operation you wish to perform is not compliant with the transaction status"},
	"25": {Status: transaction.StatusFailed, Message: "Transaction unknown by Sips"},
	"30": {Status: transaction.StatusFailed, Message: "Format error"},
	"34": {Status: transaction.StatusFailed, Message: "Fraud suspicion (seal erroneous)"},
	"40": {Status: transaction.StatusFailed, Message: "Function not supported: the operation that you wish to perform is not part of the operation type for which you are authorized"},
	"51": {Status: transaction.StatusFailed, Message: "Amount too high"},
	"54": {Status: transaction.StatusFailed, Message: "Payment mean expiry date is past"},
	"60": {Status: transaction.StatusPending, Message: "Transaction pending"},
	"63": {Status: transaction.StatusFailed, Message: "Security rules not observed, transaction stopped"},
	"75": {Status: transaction.StatusFailed, Message: "Number of attempts at entering the card number exceeded"},
	"90": {Status: transaction.StatusFailed, Message: "Service temporarily unavailable"},
	"94": {Status: transaction.StatusFailed, Message: "Duplicated transaction: the transactionReference has been used previously"},
	"97": {Status: transaction.StatusFailed, Message: "Time frame exceeded, transaction refused"},
	"99": {Status: transaction.StatusFailed, Message: "Temporary problem at the Sips Office Server level"},
}

// Message returns the dictionary message for a responseCode.
func Message(code string) string {
	return responseCodes.Message(code)
}
