package verb

import "testing"

func TestExtract(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name        string
		description string
		wantCompany string
		wantOK      bool
	}{
		{
			name:        "well-known literal with company suffix noise",
			description: "NETFLIX INTERNATIONAL B.V. Netflix Monthly Subscription",
			wantCompany: "NETFLIX",
			wantOK:      true,
		},
		{
			name:        "literal buried in banking boilerplate",
			description: "SEPA INCASSO ALGEMEEN DOORLOPEND Incassant NL86ZZZ301124411190 NETFLIX betaling 12-01",
			wantCompany: "NETFLIX",
			wantOK:      true,
		},
		{
			name:        "lowercase input is normalized",
			description: "spotify ab stockholm",
			wantCompany: "SPOTIFY",
			wantOK:      true,
		},
		{
			name:        "unknown vendor with vowels",
			description: "SEPA OVERBOEKING Bakkerij Vermeulen factuur 20240112",
			wantCompany: "BAKKERIJ",
			wantOK:      true,
		},
		{
			name:        "trade name starting with digit",
			description: "BETAALAUTOMAAT 7ELEVEN AMSTERDAM 12.01.24",
			wantCompany: "7ELEVEN",
			wantOK:      true,
		},
		{
			name:        "known acronym without vowels",
			description: "KLM 0123456789 TICKET",
			wantCompany: "KLM",
			wantOK:      true,
		},
		{
			name:        "unknown vowel-free token rejected",
			description: "XTZKQ 12345",
			wantOK:      false,
		},
		{
			name:        "iban and numeric noise only",
			description: "NL91ABNA0417164300 20240112 1234567",
			wantOK:      false,
		},
		{
			name:        "stop words only",
			description: "VAN DEN PAYMENT SERVICES ONLINE",
			wantOK:      false,
		},
		{
			name:        "empty description",
			description: "",
			wantOK:      false,
		},
		{
			name:        "long opaque identifier rejected, real name wins",
			description: "GT4XK9PQZ2RWMNBH Hotel Zeezicht",
			wantCompany: "HOTEL",
			wantOK:      true,
		},
		{
			name:        "token above 25 chars is discarded",
			description: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAA Vermeer",
			wantCompany: "VERMEER",
			wantOK:      true,
		},
		{
			name:        "boilerplate word inside trade name survives",
			description: "SEPA OVERBOEKING BICYCLE SHOP JANSSEN",
			wantCompany: "BICYCLE",
			wantOK:      true,
		},
		{
			name:        "trade name extending a boilerplate word",
			description: "SEPA OVERBOEKING IDEALE WONING MAKELAARS",
			wantCompany: "IDEALE",
			wantOK:      true,
		},
		{
			name:        "boilerplate phrase still stripped as whole words",
			description: "IDEAL BETAALVERZOEK TUINCENTRUM GROENRIJK",
			wantCompany: "BETAALVERZOEK",
			wantOK:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Extract(tt.description)
			if ok != tt.wantOK {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.description, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if got.Company != tt.wantCompany {
				t.Errorf("Extract(%q) company = %q, want %q", tt.description, got.Company, tt.wantCompany)
			}
		})
	}
}

func TestExtractCompound(t *testing.T) {
	extractor := NewExtractor()

	tests := []struct {
		name          string
		description   string
		wantCompany   string
		wantReference string
		wantCompound  bool
	}{
		{
			name:          "star-delimited booking reference",
			description:   "SPOTIFY*P2B4C6D8 Stockholm",
			wantCompany:   "SPOTIFY",
			wantReference: "P2B4C6D8",
			wantCompound:  true,
		},
		{
			name:          "hash-delimited reference",
			description:   "RINGO#88412 parkeren Utrecht",
			wantCompany:   "RINGO",
			wantReference: "88412",
			wantCompound:  true,
		},
		{
			name:         "plain verb is not compound",
			description:  "SPOTIFY AB",
			wantCompany:  "SPOTIFY",
			wantCompound: false,
		},
		{
			name:         "trailing delimiter without reference",
			description:  "COOLBLUE* bestelling",
			wantCompany:  "COOLBLUE",
			wantCompound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractor.Extract(tt.description)
			if !ok {
				t.Fatalf("Extract(%q) returned no verb", tt.description)
			}
			if got.Company != tt.wantCompany {
				t.Errorf("company = %q, want %q", got.Company, tt.wantCompany)
			}
			if got.IsCompound != tt.wantCompound {
				t.Errorf("IsCompound = %v, want %v", got.IsCompound, tt.wantCompound)
			}
			if tt.wantCompound && got.Reference != tt.wantReference {
				t.Errorf("reference = %q, want %q", got.Reference, tt.wantReference)
			}
		})
	}
}

func TestExtractLiteralStability(t *testing.T) {
	// A recognized literal must win regardless of surrounding noise.
	extractor := NewExtractor()

	surroundings := []string{
		"NETFLIX",
		"SEPA OVERBOEKING NETFLIX",
		"NL91ABNA0417164300 NETFLIX 12-01-2024",
		"Zakelijke rekening afschrift NETFLIX INTERNATIONAL B.V.",
		"betaling NETFLIX kenmerk 99182736450",
	}

	for _, desc := range surroundings {
		got, ok := extractor.Extract(desc)
		if !ok || got.Company != "NETFLIX" {
			t.Errorf("Extract(%q) = (%+v, %v), want NETFLIX", desc, got, ok)
		}
	}
}
