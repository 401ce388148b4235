// Package verb extracts normalized counterparty tokens ("verbs") from
// free-text bank statement descriptions.
package verb

import (
	"regexp"
	"strings"
)

// Verb is a normalized counterparty token extracted from a description.
// A compound verb carries a per-booking reference next to the company
// component (e.g. SPOTIFY*P0123 splits into SPOTIFY and P0123); pattern
// keys always use the company component.
type Verb struct {
	Raw        string
	Company    string
	Reference  string
	IsCompound bool
}

// compound delimiters used by card networks and PSPs to append a booking
// reference to the merchant name.
const compoundDelimiters = "*#"

// wellKnownLiterals is the fast path: if any of these appear as a word in
// the description, extraction returns that token immediately, regardless
// of surrounding noise.
var wellKnownLiterals = []string{
	"NETFLIX",
	"SPOTIFY",
	"AMAZON",
	"PAYPAL",
	"GOOGLE",
	"APPLE",
	"MICROSOFT",
	"VODAFONE",
	"ZIGGO",
	"BOL",
	"COOLBLUE",
	"THUISBEZORGD",
}

// knownAcronyms are short vowel-free counterparty names that would
// otherwise be rejected by the vowel check.
var knownAcronyms = map[string]bool{
	"KLM": true,
	"TNT": true,
	"DHL": true,
	"UPS": true,
	"KPN": true,
	"SNS": true,
	"BCC": true,
	"NPL": true,
}

// stopWords are connective and noise words that never identify a
// counterparty on their own.
var stopWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "FROM": true, "WITH": true,
	"VAN": true, "DEN": true, "DER": true, "HET": true, "EEN": true,
	"VOOR": true, "NAAR": true, "DOOR": true,
	"LTD": true, "INC": true, "GMBH": true, "LLC": true, "CORP": true,
	"INTERNATIONAL": true, "HOLDING": true, "GROUP": true, "GROEP": true,
	"SERVICES": true, "SERVICE": true, "ONLINE": true, "DIGITAL": true,
	"PAYMENT": true, "PAYMENTS": true, "BETALING": true, "FACTUUR": true,
	"INVOICE": true, "MONTHLY": true, "YEARLY": true, "SUBSCRIPTION": true,
	"KENMERK": true, "OMSCHRIJVING": true, "MACHTIGING": true,
	"WWW": true, "COM": true, "HTTPS": true,
}

// boilerplatePhrases are banking-protocol phrases stripped before
// tokenization. Matched as whole words only; longer phrases first so
// prefixes do not shadow them.
var boilerplatePhrases = []string{
	"SEPA OVERBOEKING",
	"SEPA INCASSO ALGEMEEN DOORLOPEND",
	"SEPA INCASSO",
	"SEPA DIRECT DEBIT",
	"DIRECT DEBIT",
	"STANDING ORDER",
	"BETAALAUTOMAAT",
	"OVERBOEKING",
	"INCASSO",
	"IDEAL",
	"SEPA",
	"BIC",
	"IBAN",
	"PASVOLGNR",
	"VALUTADATUM",
	"TRANSACTIEDATUM",
	"CARD PAYMENT",
	"POS PURCHASE",
	"ATM WITHDRAWAL",
	"VISA",
	"MASTERCARD",
	"MAESTRO",
}

var (
	// Word-bounded so phrase fragments inside trade names survive:
	// BIC must not eat the front of BICYCLE.
	boilerplateRe = regexp.MustCompile(`\b(?:` + strings.Join(boilerplatePhrases, "|") + `)\b`)

	ibanRe     = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z]{4}[A-Z0-9]{6,20}\b`)
	dateLikeRe = regexp.MustCompile(`\b\d{1,2}[-./:]\d{1,2}([-./:]\d{2,4})?\b`)
	numericRe  = regexp.MustCompile(`\b\d+\b`)
	tokenRe    = regexp.MustCompile(`[A-Z0-9]+`)
	vowelRe    = regexp.MustCompile(`[AEIOU]`)
)

// transform is a pure description-level rewrite step.
type transform struct {
	apply func(string) string
	name  string
}

// tokenFilter is a pure per-token acceptance step. Filters run in order;
// the first token that survives all of them wins.
type tokenFilter struct {
	keep func(string) bool
	name string
}

// Extractor extracts counterparty verbs from statement descriptions.
// It is stateless and safe for concurrent use.
type Extractor struct {
	transforms []transform
	filters    []tokenFilter
}

// NewExtractor creates an extractor with the default strategy chain.
func NewExtractor() *Extractor {
	return &Extractor{
		transforms: []transform{
			{name: "strip_boilerplate", apply: stripBoilerplate},
			{name: "strip_iban", apply: func(s string) string { return ibanRe.ReplaceAllString(s, " ") }},
			{name: "strip_dates", apply: func(s string) string { return dateLikeRe.ReplaceAllString(s, " ") }},
			{name: "strip_numeric_runs", apply: func(s string) string { return numericRe.ReplaceAllString(s, " ") }},
		},
		filters: []tokenFilter{
			{name: "length", keep: func(tok string) bool {
				return len(tok) >= 3 && len(tok) <= 25
			}},
			{name: "stop_words", keep: func(tok string) bool {
				return !stopWords[tok]
			}},
			{name: "pure_numeric", keep: func(tok string) bool {
				return strings.IndexFunc(tok, func(r rune) bool {
					return r >= 'A' && r <= 'Z'
				}) >= 0
			}},
			{name: "opaque_identifier", keep: func(tok string) bool {
				// Long alphanumeric runs without vowels are transaction
				// identifiers, not trade names.
				return len(tok) <= 5 || vowelRe.MatchString(tok)
			}},
			{name: "acronym_or_vowel", keep: func(tok string) bool {
				if vowelRe.MatchString(tok) {
					return true
				}
				return len(tok) >= 3 && len(tok) <= 5 && knownAcronyms[tok]
			}},
		},
	}
}

// Extract returns the counterparty verb for a description, or false when
// no acceptable token survives filtering. That miss is expected for
// genuinely novel counterparties and is not an error.
func (e *Extractor) Extract(description string) (Verb, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(description))
	if normalized == "" {
		return Verb{}, false
	}

	// Fast path: well-known counterparty literals win over any noise.
	for _, literal := range wellKnownLiterals {
		if containsWord(normalized, literal) {
			return e.finish(normalized, literal), true
		}
	}

	cleaned := normalized
	for _, t := range e.transforms {
		cleaned = t.apply(cleaned)
	}

	for _, word := range strings.Fields(cleaned) {
		// Compound candidates keep their delimiter intact through
		// tokenization so the company component can be recovered.
		if company, ok := e.compoundCompany(word); ok {
			return e.splitCompound(word, company), true
		}

		for _, tok := range tokenRe.FindAllString(word, -1) {
			if e.accept(tok) {
				return e.finish(normalized, tok), true
			}
		}
	}

	return Verb{}, false
}

// accept runs a token through every filter in chain order.
func (e *Extractor) accept(tok string) bool {
	for _, f := range e.filters {
		if !f.keep(tok) {
			return false
		}
	}
	return true
}

// compoundCompany checks whether a word is a compound booking token
// (company + delimiter + reference) with an acceptable company part.
func (e *Extractor) compoundCompany(word string) (string, bool) {
	idx := strings.IndexAny(word, compoundDelimiters)
	if idx <= 0 || idx == len(word)-1 {
		return "", false
	}
	company := strings.Join(tokenRe.FindAllString(word[:idx], -1), "")
	if company == "" || !e.accept(company) {
		return "", false
	}
	return company, true
}

// splitCompound builds a compound verb from a delimiter-joined word.
func (e *Extractor) splitCompound(word, company string) Verb {
	idx := strings.IndexAny(word, compoundDelimiters)
	reference := strings.Join(tokenRe.FindAllString(word[idx+1:], -1), "")
	if reference == "" {
		return Verb{Raw: company, Company: company}
	}
	return Verb{
		Raw:        company + string(word[idx]) + reference,
		Company:    company,
		Reference:  reference,
		IsCompound: true,
	}
}

// finish builds the result for a plain (non-compound) token, checking
// whether the original description carried the token in compound form.
func (e *Extractor) finish(normalized, tok string) Verb {
	// A literal or token may still appear as COMPANY*REF in the raw text.
	for _, word := range strings.Fields(normalized) {
		idx := strings.IndexAny(word, compoundDelimiters)
		if idx <= 0 {
			continue
		}
		prefix := strings.Join(tokenRe.FindAllString(word[:idx], -1), "")
		if prefix == tok {
			return e.splitCompound(word, tok)
		}
	}
	return Verb{Raw: tok, Company: tok}
}

func stripBoilerplate(s string) string {
	return boilerplateRe.ReplaceAllString(s, " ")
}

// containsWord reports whether literal occurs in s bounded by
// non-alphanumeric characters.
func containsWord(s, literal string) bool {
	for start := 0; ; {
		idx := strings.Index(s[start:], literal)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(literal)
		leftOK := idx == 0 || !isAlnum(s[idx-1])
		rightOK := end == len(s) || !isAlnum(s[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
