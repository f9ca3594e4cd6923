package fixture

import (
	"context"
	"strings"
	"sync"
)

// Samples are cover-page texts covering each insurance line the heuristic
// distinguishes. The document name is appended as the last line.
var Samples = []string{
	`Professional Indemnity Insurance Policy
BIA Accountants
This policy provides professional liability cover for accountants.
Professional indemnity insurance with accountant specific covers.`,

	`Farm Extra Insurance
Argis Insurance
Agricultural and farming insurance policy.
Covers farm buildings, rural property, and agricultural equipment.`,

	`Residential Landlord Policy
Castle Insurance
Landlord and rental property insurance.
Investment property landlord cover for residential properties.`,

	`Construction Indemnity Cover
AMI Building
Contract works and builders indemnity.
Construction and building project insurance protection.`,

	`Car Insurance – Policy Wording
AMI Limited
Motor vehicle insurance policy for New Zealand.
Car insurance with comprehensive vehicle cover options.`,
}

// Extractor hands out sample texts in rotation, one per call, so a batch
// exercises every classification path without parsing real PDFs.
type Extractor struct {
	mu      sync.Mutex
	samples []string
	calls   int
}

func NewExtractor(samples []string) *Extractor {
	if len(samples) == 0 {
		samples = Samples
	}
	return &Extractor{samples: samples}
}

func (e *Extractor) Extract(_ context.Context, name string) (string, error) {
	e.mu.Lock()
	e.calls++
	sample := e.samples[e.calls%len(e.samples)]
	e.mu.Unlock()

	return strings.Join([]string{sample, name}, "\n"), nil
}
