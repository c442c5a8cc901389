// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// forexPairRegex matches instrument symbols like EUR/USD.
var forexPairRegex = regexp.MustCompile(`^[A-Z]{3}/[A-Z]{3}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("forex_pair", validateForexPair)
		_ = v.RegisterValidation("transaction_type", validateTransactionType)
		_ = v.RegisterValidation("ledger_date", validateLedgerDate)
	}
}

func validateForexPair(fl validator.FieldLevel) bool {
	return forexPairRegex.MatchString(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "deposit", "withdrawal":
		return true
	}
	return false
}

var ledgerDateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func validateLedgerDate(fl validator.FieldLevel) bool {
	return ledgerDateRegex.MatchString(fl.Field().String())
}
