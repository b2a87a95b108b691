// Package fingerprint derives the cryptographic document fingerprint a tax
// authority validates byte-for-byte, plus the machine-readable verification
// payload embedded in the scannable code on a printed invoice.
//
// Both outputs are pure functions of their inputs: identical inputs always
// reproduce the identical digest, and any single differing input byte,
// including the environment flag, changes it.
package fingerprint

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/example/fiscal-ledger/internal/invoice"
)

// Environment selects the tax authority environment the document targets.
type Environment string

const (
	EnvProduction Environment = "1"
	EnvTest       Environment = "2"
)

// Tax slot codes in their fixed digest order. The third slot is reserved for
// the municipal tax, which this system never invoices directly; it is always
// hashed as 0.00.
const (
	slotVAT         = "01"
	slotConsumption = "04"
	slotMunicipal   = "03"
)

// DefaultVerificationURL is the authority's lookup endpoint; %s receives the
// digest.
const DefaultVerificationURL = "https://catalogo-vpfe.dian.gov.co/document/searchqr?documentkey=%s"

// Header carries the document identity fields that enter the digest.
type Header struct {
	// DocumentNumber is the bare sequence number, without series prefix.
	DocumentNumber string
	// SeriesPrefix, when set, prefixes the document number in the payload
	// only; the digest uses the bare number.
	SeriesPrefix string
	// IssueDate in YYYY-MM-DD.
	IssueDate string
	// IssueTime in HH:MM:SS-05:00 (fixed UTC offset).
	IssueTime string
	// IssuerID is the issuer's tax identifier without check digit.
	IssuerID string
	// BuyerTypeCode is the buyer's identity document type code.
	BuyerTypeCode string
	// BuyerID is the buyer's identifier.
	BuyerID string
	// TechnicalKey is the shared key assigned by the authority.
	TechnicalKey string
	// Environment is the production/test flag.
	Environment Environment
	// VerificationURL overrides DefaultVerificationURL when set. It must
	// contain a single %s verb for the digest.
	VerificationURL string
}

// Fingerprint is the derived digest and payload for one sales document.
// Immutable once generated; regenerating from identical inputs reproduces the
// identical digest.
type Fingerprint struct {
	Digest      string
	Payload     string
	GeneratedAt time.Time
	Environment Environment
}

func (h *Header) validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"document_number", h.DocumentNumber},
		{"issue_date", h.IssueDate},
		{"issue_time", h.IssueTime},
		{"issuer_id", h.IssuerID},
		{"buyer_type_code", h.BuyerTypeCode},
		{"buyer_id", h.BuyerID},
		{"technical_key", h.TechnicalKey},
	}
	for _, f := range required {
		if f.value == "" {
			return &MissingFieldError{Field: f.name}
		}
	}
	if h.Environment != EnvProduction && h.Environment != EnvTest {
		return &MissingFieldError{Field: "environment"}
	}
	return nil
}

// digestInput concatenates the digest fields in their mandated order with no
// separators. The byte sequence is normative; do not reorder or reformat.
func digestInput(h Header, totals invoice.TotalsRecord) string {
	var b strings.Builder
	b.WriteString(h.DocumentNumber)
	b.WriteString(h.IssueDate)
	b.WriteString(h.IssueTime)
	b.WriteString(totals.Base.StringFixed(2))
	b.WriteString(slotVAT)
	b.WriteString(totals.Tax(invoice.TaxVAT).StringFixed(2))
	b.WriteString(slotConsumption)
	b.WriteString(totals.Tax(invoice.TaxConsumption).StringFixed(2))
	b.WriteString(slotMunicipal)
	b.WriteString("0.00")
	b.WriteString(totals.GrandTotal.StringFixed(2))
	b.WriteString(h.IssuerID)
	b.WriteString(h.BuyerTypeCode)
	b.WriteString(h.BuyerID)
	b.WriteString(h.TechnicalKey)
	b.WriteString(string(h.Environment))
	return b.String()
}

// Generate derives the digest and verification payload for a sales document.
// It fails explicitly when a required header field is missing, never by
// hashing a defaulted value.
func Generate(header Header, totals invoice.TotalsRecord) (*Fingerprint, error) {
	if err := header.validate(); err != nil {
		return nil, err
	}
	if err := totals.Verify(); err != nil {
		return nil, fmt.Errorf("fingerprint: refusing inconsistent totals: %w", err)
	}

	sum := sha512.Sum384([]byte(digestInput(header, totals)))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))

	urlTemplate := header.VerificationURL
	if urlTemplate == "" {
		urlTemplate = DefaultVerificationURL
	}

	fullNumber := header.SeriesPrefix + header.DocumentNumber

	// Label order and spelling are consumed byte-for-byte by the authority's
	// scanner; keep in lockstep with digestInput's field set.
	lines := []string{
		"NumFac: " + fullNumber,
		"FecFac: " + header.IssueDate,
		"NitFac: " + header.IssuerID,
		"DocAdq: " + header.BuyerID,
		"ValFac: " + totals.Base.StringFixed(2),
		"ValIva: " + totals.Tax(invoice.TaxVAT).StringFixed(2),
		"ValOtroIm: " + totals.Tax(invoice.TaxConsumption).StringFixed(2),
		"ValTot: " + totals.GrandTotal.StringFixed(2),
		"CUFE: " + digest,
		"URL: " + fmt.Sprintf(urlTemplate, digest),
	}

	return &Fingerprint{
		Digest:      digest,
		Payload:     strings.Join(lines, "\n"),
		GeneratedAt: time.Now().UTC(),
		Environment: header.Environment,
	}, nil
}

// IssueTimeAt formats t in the fixed-offset wall-clock form the digest
// requires.
func IssueTimeAt(t time.Time, offset *time.Location) string {
	return t.In(offset).Format("15:04:05-07:00")
}

// FixedOffset is the issuing jurisdiction's UTC offset.
var FixedOffset = time.FixedZone("UTC-5", -5*60*60)
