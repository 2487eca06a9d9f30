package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NotInformed replaces blank beneficiary and function values.
const NotInformed = "Não Informado"

// Record is one disbursement (repasse) loaded from the source spreadsheet.
type Record struct {
	Municipality string          // canonical id, see NormalizeMunicipality
	Year         int32           // exercício
	AmountPaid   decimal.Decimal // vl_pago, never negative
	Beneficiary  string          // razão social
	Function     string          // função de governo
	Row          int             // 1-based source row, header included
}

// FillMissing trims s and replaces an empty result with NotInformed.
func FillMissing(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NotInformed
	}
	return s
}
