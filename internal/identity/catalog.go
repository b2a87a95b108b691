package identity

// DocumentType is the coded kind of identity document a third party presents.
type DocumentType string

const (
	DocTypeCivilRegistry DocumentType = "11"
	DocTypeIDCard        DocumentType = "12"
	DocTypeCitizenCard   DocumentType = "13"
	DocTypeForeignCard   DocumentType = "21"
	DocTypeForeignID     DocumentType = "22"
	DocTypeTaxID         DocumentType = "31"
	DocTypePassport      DocumentType = "41"
	DocTypeForeignDoc    DocumentType = "42"
	DocTypeForeignTaxID  DocumentType = "50"
)

// DocumentTypes maps document type codes to their catalog names.
var DocumentTypes = map[DocumentType]string{
	DocTypeCivilRegistry: "Civil registry",
	DocTypeIDCard:        "Identity card",
	DocTypeCitizenCard:   "Citizenship card",
	DocTypeForeignCard:   "Foreigner card",
	DocTypeForeignID:     "Foreigner identity card",
	DocTypeTaxID:         "Tax identification number",
	DocTypePassport:      "Passport",
	DocTypeForeignDoc:    "Foreign identification document",
	DocTypeForeignTaxID:  "Foreign tax identification number",
}

// FiscalRegimes maps fiscal regime codes to their catalog names.
var FiscalRegimes = map[string]string{
	"48": "VAT responsible",
	"49": "Not VAT responsible (simplified regime)",
}

// FiscalResponsibilities maps responsibility codes to their catalog names.
var FiscalResponsibilities = map[string]string{
	"O-13":    "Large taxpayer",
	"O-15":    "Self-withholder",
	"O-23":    "VAT withholding agent",
	"O-47":    "Simplified taxation regime",
	"R-99-PN": "Not applicable - other",
}

// KnownDocumentType reports whether code is in the published catalog.
func KnownDocumentType(code DocumentType) bool {
	_, ok := DocumentTypes[code]
	return ok
}

// KnownFiscalRegime reports whether code is in the published regime catalog.
func KnownFiscalRegime(code string) bool {
	_, ok := FiscalRegimes[code]
	return ok
}

// KnownFiscalResponsibility reports whether code is in the published
// responsibilities catalog.
func KnownFiscalResponsibility(code string) bool {
	_, ok := FiscalResponsibilities[code]
	return ok
}
