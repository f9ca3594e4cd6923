package domain

import (
	"fmt"
	"strings"
	"time"
)

type RecordStatus string

const (
	StatusNeedsReview RecordStatus = "needs_review"
	StatusClassified  RecordStatus = "classified"
	StatusOrganized   RecordStatus = "organized"
)

const (
	Unknown        = "Unknown"
	GenericProduct = "General Policy"

	DocumentTypeWording = "Policy Wording"
	DocumentTypeGeneric = "Policy Document"

	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"

	LocalUploadSource = "local_upload"

	DateLayout      = "2006-01-02"
	TimestampLayout = time.RFC3339
)

// lifecycleRank orders statuses; a record may only move to the next rank.
var lifecycleRank = map[RecordStatus]int{
	StatusNeedsReview: 1,
	StatusClassified:  2,
	StatusOrganized:   3,
}

func (s RecordStatus) Valid() bool {
	_, ok := lifecycleRank[s]
	return ok
}

// CanAdvanceTo reports whether next is the immediate successor of s.
func (s RecordStatus) CanAdvanceTo(next RecordStatus) bool {
	from, ok := lifecycleRank[s]
	if !ok {
		return false
	}
	to, ok := lifecycleRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

func (s RecordStatus) String() string {
	if s == "" {
		return "unknown"
	}
	return string(s)
}

// Fields are the four classification fields that drive naming and admission.
type Fields struct {
	Country       string `json:"country"`
	Insurer       string `json:"insurer"`
	InsuranceLine string `json:"insurance_line"`
	ProductName   string `json:"product_name"`
}

// Named returns the fields in canonical order with their record keys.
func (f Fields) Named() [4][2]string {
	return [4][2]string{
		{"country", f.Country},
		{"insurer", f.Insurer},
		{"insurance_line", f.InsuranceLine},
		{"product_name", f.ProductName},
	}
}

// FirstUnresolved returns the key of the first unresolved field in canonical order.
func (f Fields) FirstUnresolved() (string, bool) {
	for _, kv := range f.Named() {
		if !IsResolved(kv[1]) {
			return kv[0], true
		}
	}
	return "", false
}

// UnresolvedDetail describes the first unresolved field and why it cannot be used.
func (f Fields) UnresolvedDetail() (string, bool) {
	for _, kv := range f.Named() {
		key, value := kv[0], kv[1]
		switch {
		case value == Unknown:
			return key + " is 'Unknown'", true
		case strings.TrimSpace(value) == "":
			return key + " is blank", true
		case CleanSegment(value) == Unknown:
			return fmt.Sprintf("%s %q cleans to 'Unknown'", key, value), true
		}
	}
	return "", false
}

// IsResolved reports whether a classification value can be used for naming.
func IsResolved(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || value == Unknown {
		return false
	}
	return CleanSegment(value) != Unknown
}

// Classification is the heuristic output for one text sample.
type Classification struct {
	Fields
	DocumentType string `json:"document_type"`
	Confidence   string `json:"confidence"`
}

func DocumentTypeFor(productName string) string {
	if strings.Contains(productName, "Wording") {
		return DocumentTypeWording
	}
	return DocumentTypeGeneric
}

// ConfidenceFor ignores the product name, which always has a fallback value.
func ConfidenceFor(f Fields) string {
	if f.Country != Unknown && f.Insurer != Unknown && f.InsuranceLine != Unknown {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

func NewClassification(f Fields) Classification {
	return Classification{
		Fields:       f,
		DocumentType: DocumentTypeFor(f.ProductName),
		Confidence:   ConfidenceFor(f),
	}
}

// Provenance describes where a raw document came from.
type Provenance struct {
	Filename     string `yaml:"filename"`
	SourceURL    string `yaml:"source_url"`
	DownloadDate string `yaml:"download_date"`
}

type Record struct {
	OriginalFilename  string       `json:"original_filename"`
	GeneratedFilename string       `json:"generated_filename"`
	Country           string       `json:"country"`
	Insurer           string       `json:"insurer"`
	InsuranceLine     string       `json:"insurance_line"`
	ProductName       string       `json:"product_name"`
	DocumentType      string       `json:"document_type"`
	SourceURL         string       `json:"source_url"`
	DownloadDate      string       `json:"download_date"`
	Confidence        string       `json:"confidence"`
	Status            RecordStatus `json:"status"`
	CreatedAt         string       `json:"created_at"`
	OrganizedDate     string       `json:"organized_date,omitempty"`

	// Extra holds keys this program does not own, e.g. reviewer notes.
	Extra map[string]any `json:"-"`
	// Absent lists owned keys the stored document did not carry. They stay
	// out of the document until they hold a value.
	Absent []string `json:"-"`
}

// NewRecord builds a needs_review record from a classification result.
func NewRecord(filename string, cls Classification, prov Provenance, now time.Time) *Record {
	today := now.Format(DateLayout)
	if prov.SourceURL == "" {
		prov.SourceURL = LocalUploadSource
	}
	if prov.DownloadDate == "" {
		prov.DownloadDate = today
	}
	return &Record{
		OriginalFilename:  filename,
		GeneratedFilename: BuildFilename(cls.Fields),
		Country:           cls.Country,
		Insurer:           cls.Insurer,
		InsuranceLine:     cls.InsuranceLine,
		ProductName:       cls.ProductName,
		DocumentType:      cls.DocumentType,
		SourceURL:         prov.SourceURL,
		DownloadDate:      prov.DownloadDate,
		Confidence:        cls.Confidence,
		Status:            StatusNeedsReview,
		CreatedAt:         today,
	}
}

func (r *Record) Fields() Fields {
	return Fields{
		Country:       r.Country,
		Insurer:       r.Insurer,
		InsuranceLine: r.InsuranceLine,
		ProductName:   r.ProductName,
	}
}

// ApplyFields replaces the classification fields and recomputes everything derived from them.
func (r *Record) ApplyFields(f Fields) {
	r.Country = f.Country
	r.Insurer = f.Insurer
	r.InsuranceLine = f.InsuranceLine
	r.ProductName = f.ProductName
	cls := NewClassification(f)
	r.DocumentType = cls.DocumentType
	r.Confidence = cls.Confidence
	r.GeneratedFilename = BuildFilename(f)
}

// Advance moves the record one step along the lifecycle.
func (r *Record) Advance(next RecordStatus) error {
	if !r.Status.CanAdvanceTo(next) {
		return WrapError(
			ErrInvalidTransition,
			"advance status",
			fmt.Errorf("%s -> %s", r.Status.String(), next),
		)
	}
	r.Status = next
	return nil
}

// MarkOrganized stamps the organize outcome; organized_date is never rewritten.
func (r *Record) MarkOrganized(generated string, now time.Time) error {
	if err := r.Advance(StatusOrganized); err != nil {
		return err
	}
	r.GeneratedFilename = generated
	if r.OrganizedDate == "" {
		r.OrganizedDate = now.Format(TimestampLayout)
	}
	return nil
}

func (r *Record) Clone() *Record {
	out := *r
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	out.Absent = append([]string(nil), r.Absent...)
	return &out
}
