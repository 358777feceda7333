package validators

import (
	"errors"
)

var (
	ErrTransactionIDEmpty   = errors.New("no transaction ID provided")
	ErrTransactionIDInvalid = errors.New("transaction ID must be exactly 12 digits")
	ErrAmountInvalid        = errors.New("amount must be bigger than 0")
)

const transactionIDLen = 12

// TransactionIDValidator checks the reference a user copies from their
// payment confirmation
func TransactionIDValidator(id string) error {
	if id == "" {
		return ErrTransactionIDEmpty
	}

	if len(id) != transactionIDLen {
		return ErrTransactionIDInvalid
	}

	for _, r := range id {
		if r < '0' || r > '9' {
			return ErrTransactionIDInvalid
		}
	}

	return nil
}

func AmountValidator(amount int64) error {
	if amount <= 0 {
		return ErrAmountInvalid
	}

	return nil
}
