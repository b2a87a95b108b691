package invoice

// Tax and withholding codes from the national tax catalog.
const (
	TaxVAT         = "01" // value-added tax
	TaxConsumption = "04" // national consumption tax

	WithholdingVAT       = "05" // VAT withholding
	WithholdingIncome    = "06" // income-tax withholding at source
	WithholdingMunicipal = "07" // municipal industry and commerce withholding
)

// TaxCodes maps tax codes to their catalog names.
var TaxCodes = map[string]string{
	TaxVAT:         "Value-added tax",
	TaxConsumption: "National consumption tax",
}

// WithholdingCodes maps withholding codes to their catalog names.
var WithholdingCodes = map[string]string{
	WithholdingVAT:       "VAT withholding",
	WithholdingIncome:    "Income-tax withholding",
	WithholdingMunicipal: "Municipal-tax withholding",
}

// PaymentTerms is the closed set of settlement terms for a transaction.
type PaymentTerms string

const (
	TermsCash   PaymentTerms = "cash"
	TermsCredit PaymentTerms = "credit"
)

// ValidTerms reports whether terms is in the closed cash/credit set.
func ValidTerms(terms PaymentTerms) bool {
	return terms == TermsCash || terms == TermsCredit
}
