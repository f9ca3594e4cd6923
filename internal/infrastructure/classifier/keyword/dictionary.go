package keyword

// Category pairs a label with the keywords that select it. Slices of
// categories are scanned in order and the first match wins.
type Category struct {
	Label    string
	Keywords []string
}

// DefaultInsurers is ordered; an earlier entry wins over a later one.
var DefaultInsurers = []string{
	"AMI",
	"AA Insurance",
	"State Insurance",
	"Tower",
	"AIA",
	"Southern Cross",
	"Vero",
	"FMG",
	"NZI",
	"NRMA",
	"Suncorp",
	"AXA",
	"Aviva",
	"Direct Line",
	"Bupa",
	"QBE",
	"Argis",
	"BIA",
	"Castle",
	"Allianz",
	"IAG",
}

// DefaultLines lists insurance lines most specific first.
var DefaultLines = []Category{
	{Label: "Professional Indemnity", Keywords: []string{"professional indemnity", "pi insurance", "professional liability", "accountants liability"}},
	{Label: "Farm", Keywords: []string{"farm insurance", "agricultural", "farming", "rural property"}},
	{Label: "Landlord", Keywords: []string{"landlord", "rental property", "investment property", "residential landlord"}},
	{Label: "Construction", Keywords: []string{"construction", "builders indemnity", "contract works", "building project"}},
	{Label: "Motor", Keywords: []string{"car insurance", "motor", "vehicle insurance", "auto insurance"}},
	{Label: "Life", Keywords: []string{"life insurance", "life cover", "life protection"}},
	{Label: "Health", Keywords: []string{"health insurance", "medical insurance", "health cover"}},
	{Label: "Home & Contents", Keywords: []string{"home insurance", "contents insurance", "house insurance", "home & contents"}},
	{Label: "Travel", Keywords: []string{"travel insurance", "trip insurance", "travel cover"}},
}

// DefaultCountries keeps the padded short codes ("nz ", " au ") from matching inside words.
var DefaultCountries = []Category{
	{Label: "New Zealand", Keywords: []string{"new zealand", "nz ", " nz", "auckland", "wellington"}},
	{Label: "Australia", Keywords: []string{"australia", " au ", "sydney", "melbourne"}},
	{Label: "United Kingdom", Keywords: []string{"united kingdom", "uk ", " uk", "england", "scotland"}},
}

// Labels returns the category labels in scan order.
func Labels(categories []Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Label)
	}
	return out
}

var productKeywords = []string{"policy", "insurance", "wording", "cover"}

const (
	insurerScanRunes = 2000
	productScanLines = 30
	productMinRunes  = 10
	productMaxRunes  = 100
)
