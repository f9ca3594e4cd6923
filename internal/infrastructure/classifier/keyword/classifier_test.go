package keyword

import (
	"context"
	"strings"
	"testing"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
)

func TestClassifyProfessionalIndemnityScenario(t *testing.T) {
	text := "Professional Indemnity Insurance Policy\nBIA Accountants\nThis policy provides professional liability cover for accountants."

	cls, err := New().Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if cls.Insurer != "BIA" {
		t.Fatalf("expected insurer BIA, got %q", cls.Insurer)
	}
	if cls.InsuranceLine != "Professional Indemnity" {
		t.Fatalf("expected Professional Indemnity, got %q", cls.InsuranceLine)
	}
	if cls.ProductName != "Professional Indemnity Insurance Policy" {
		t.Fatalf("unexpected product %q", cls.ProductName)
	}
	if cls.DocumentType != domain.DocumentTypeGeneric {
		t.Fatalf("expected generic document type, got %q", cls.DocumentType)
	}
	if cls.Country != domain.Unknown || cls.Confidence != domain.ConfidenceMedium {
		t.Fatalf("expected unknown country and medium confidence, got %q/%q", cls.Country, cls.Confidence)
	}
}

func TestDetectInsurerUsesDictionaryOrderNotTextPosition(t *testing.T) {
	c := New(WithInsurers([]string{"BIA", "AMI"}))
	text := "AMI Limited reseller\nunderwritten by BIA"
	if got := c.DetectInsurer(text); got != "BIA" {
		t.Fatalf("expected BIA by dictionary order, got %q", got)
	}

	c = New(WithInsurers([]string{"AMI", "BIA"}))
	if got := c.DetectInsurer(text); got != "AMI" {
		t.Fatalf("expected AMI by dictionary order, got %q", got)
	}
}

func TestDetectInsurerIgnoresTextBeyondCoverSection(t *testing.T) {
	c := New()
	padding := strings.Repeat("x", insurerScanRunes)
	if got := c.DetectInsurer(padding + "Tower"); got != domain.Unknown {
		t.Fatalf("insurer after offset %d must be ignored, got %q", insurerScanRunes, got)
	}

	inside := strings.Repeat("x", insurerScanRunes-len("Tower")) + "Tower"
	if got := c.DetectInsurer(inside); got != "Tower" {
		t.Fatalf("insurer ending exactly at the boundary must be found, got %q", got)
	}

	// Multi-byte runes count as single characters.
	wide := strings.Repeat("é", insurerScanRunes-3) + "AMI"
	if got := c.DetectInsurer(wide); got != "AMI" {
		t.Fatalf("expected AMI within %d runes, got %q", insurerScanRunes, got)
	}
}

func TestDetectInsurerIsCaseInsensitive(t *testing.T) {
	if got := New().DetectInsurer("issued by suncorp group"); got != "Suncorp" {
		t.Fatalf("expected Suncorp, got %q", got)
	}
}

func TestDetectLinePrefersSpecificCategory(t *testing.T) {
	c := New()
	cases := []struct {
		text string
		want string
	}{
		{"Motor vehicle cover and professional indemnity extension", "Professional Indemnity"},
		{"Farming landlord package", "Farm"},
		{"Residential landlord home & contents", "Landlord"},
		{"Contract works for a motor garage", "Construction"},
		{"Comprehensive car insurance", "Motor"},
		{"Life cover for families", "Life"},
		{"Medical insurance plan", "Health"},
		{"House insurance summary", "Home & Contents"},
		{"Trip insurance", "Travel"},
		{"Nothing relevant here", domain.Unknown},
	}
	for _, tc := range cases {
		if got := c.DetectLine(tc.text); got != tc.want {
			t.Fatalf("DetectLine(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectCountry(t *testing.T) {
	c := New()
	cases := []struct {
		text string
		want string
	}{
		{"Motor vehicle insurance policy for New Zealand.", "New Zealand"},
		{"Head office in Sydney", "Australia"},
		{"Registered in England and Wales", "United Kingdom"},
		{"Auckland and Melbourne offices", "New Zealand"},
		{"Nowhere in particular", domain.Unknown},
	}
	for _, tc := range cases {
		if got := c.DetectCountry(tc.text); got != tc.want {
			t.Fatalf("DetectCountry(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectProductName(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"first qualifying line", "   Car Insurance – Policy Wording  \nAMI Limited", "Car Insurance – Policy Wording"},
		{"skips web addresses", "www.insurancepolicy.co.nz\nHome Insurance Policy", "Home Insurance Policy"},
		{"length ten is too short", "Cover note\nTravel Cover Summary", "Travel Cover Summary"},
		{"no keyword", "Annual Report 2024\nBoard of directors", domain.GenericProduct},
		{"too long", strings.Repeat("policy ", 20), domain.GenericProduct},
		{"beyond line thirty", strings.Repeat("-\n", 30) + "Landlord Insurance Policy", domain.GenericProduct},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectProductName(tc.text); got != tc.want {
				t.Fatalf("DetectProductName() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyDerivesWordingAndHighConfidence(t *testing.T) {
	text := "Car Insurance – Policy Wording\nAMI Limited\nMotor vehicle insurance policy for New Zealand."
	cls, err := New().Classify(context.Background(), text)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	want := domain.Fields{
		Country:       "New Zealand",
		Insurer:       "AMI",
		InsuranceLine: "Motor",
		ProductName:   "Car Insurance – Policy Wording",
	}
	if cls.Fields != want {
		t.Fatalf("unexpected fields %+v", cls.Fields)
	}
	if cls.DocumentType != domain.DocumentTypeWording || cls.Confidence != domain.ConfidenceHigh {
		t.Fatalf("unexpected derived fields %q/%q", cls.DocumentType, cls.Confidence)
	}
}

func TestLabelsKeepScanOrder(t *testing.T) {
	got := Labels(DefaultLines)
	if len(got) != len(DefaultLines) || got[0] != "Professional Indemnity" || got[len(got)-1] != "Travel" {
		t.Fatalf("unexpected labels %v", got)
	}
}
