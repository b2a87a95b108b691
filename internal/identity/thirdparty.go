package identity

import (
	"fmt"
	"strconv"
	"strings"
)

// Role distinguishes the commercial relationship with a third party.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
)

// ThirdParty is a customer or supplier identified by a national document.
// It is long-lived reference data looked up by id at the persistence boundary.
type ThirdParty struct {
	ID           int64
	DocumentType DocumentType
	Number       string
	CheckDigit   string
	Name         string
	Role         Role
	// FiscalRegime is a code from FiscalRegimes. Empty means not declared.
	FiscalRegime string
	// Responsibilities are codes from FiscalResponsibilities.
	Responsibilities []string
}

// Validate enforces the identification invariants: the document type must be
// cataloged, any declared fiscal regime and responsibilities must come from
// their catalogs and, for tax identifiers, the check digit must verify
// against the number.
func (tp *ThirdParty) Validate() error {
	if !KnownDocumentType(tp.DocumentType) {
		return &ValidationError{
			Field:   "document_type",
			Value:   string(tp.DocumentType),
			Message: ErrUnknownDocumentType.Error(),
		}
	}
	if tp.Number == "" {
		return &ValidationError{Field: "number", Value: "", Message: ErrEmptyIdentifier.Error()}
	}
	if tp.FiscalRegime != "" && !KnownFiscalRegime(tp.FiscalRegime) {
		return &ValidationError{
			Field:   "fiscal_regime",
			Value:   tp.FiscalRegime,
			Message: "not in the fiscal regime catalog",
		}
	}
	for _, code := range tp.Responsibilities {
		if !KnownFiscalResponsibility(code) {
			return &ValidationError{
				Field:   "responsibilities",
				Value:   code,
				Message: "not in the fiscal responsibilities catalog",
			}
		}
	}
	if tp.DocumentType == DocTypeTaxID {
		if tp.CheckDigit == "" {
			return &ValidationError{Field: "check_digit", Value: "", Message: "tax identifiers require a check digit"}
		}
		if !IsValid(tp.Number, tp.CheckDigit) {
			return &ValidationError{
				Field:   "check_digit",
				Value:   tp.CheckDigit,
				Message: ErrCheckDigitMismatch.Error(),
			}
		}
	}
	return nil
}

// FormatTaxID renders a tax identifier with thousands separators and its
// check digit, e.g. 900.123.456-8.
func FormatTaxID(number, digit string) (string, error) {
	clean := stripFormatting(number)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return "", &ValidationError{Field: "identifier", Value: number, Message: "contains non-numeric characters"}
	}

	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return fmt.Sprintf("%s-%s", b.String(), digit), nil
}

// ParseTaxID splits a formatted tax identifier into its number and check
// digit. The check digit is empty when the input has no dash-separated digit.
func ParseTaxID(formatted string) (number, digit string) {
	clean := strings.ReplaceAll(formatted, ".", "")
	parts := strings.SplitN(clean, "-", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}
