package pest

import (
	"fmt"
	"strings"
)

var defaultAdvice = map[Label]string{
	Aphids:                   "Use neem oil or insecticidal soap.",
	Armyworms:                "Apply Bacillus thuringiensis (Bt) or Spinosad.",
	BrownMarmoratedStinkBugs: "Use pheromone traps and pyrethroid sprays.",
	CabbageLoopers:           "Neem oil and Bt-based sprays work well.",
	CitrusCanker:             "Copper-based fungicides and pruning help control spread.",
	ColoradoPotatoBeetles:    "Use Spinosad or Beauveria bassiana sprays.",
	CornBorers:               "Bt corn and biological controls like Trichogramma wasps.",
	CornEarworms:             "Vegetable oils and Bacillus thuringiensis (Bt) help reduce infestation.",
	FallArmyworms:            "Early detection and use of insecticides like chlorantraniliprole.",
	FruitFlies:               "Use bait traps and remove overripe fruit.",
	SpiderMites:              "Miticides, neem oil, and predatory mites help.",
	Thrips:                   "Insecticidal soap and blue sticky traps work best.",
	TomatoHornworms:          "Handpicking and Bacillus thuringiensis (Bt) spray.",
	WesternCornRootworms:     "Crop rotation and soil-applied insecticides are effective.",
}

// Catalog maps every Label to its treatment advice. It is immutable after
// construction and safe for concurrent use.
type Catalog struct {
	advice [labelCount]string
}

// Entry is one row of the catalog as exposed to API callers.
type Entry struct {
	Label    Label  `json:"label"`
	Advisory string `json:"advisory"`
}

// NewCatalog builds a catalog from the given advice. It fails unless every
// label has non-blank text and no key falls outside the enumeration.
func NewCatalog(advice map[Label]string) (*Catalog, error) {
	c := &Catalog{}
	for l, text := range advice {
		if !l.Valid() {
			return nil, fmt.Errorf("catalog: advice for unknown label %d", int(l))
		}
		c.advice[l] = text
	}

	var missing []string
	for i, text := range c.advice {
		if strings.TrimSpace(text) == "" {
			missing = append(missing, Label(i).String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("catalog: no advice for %s", strings.Join(missing, ", "))
	}

	return c, nil
}

// DefaultCatalog returns the built-in treatment advice.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultAdvice)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the advice for l. Labels are validated at construction, so
// an out-of-range label is a programming error and yields "".
func (c *Catalog) Lookup(l Label) string {
	if !l.Valid() {
		return ""
	}
	return c.advice[l]
}

// Entries lists the catalog in label order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, Count)
	for _, l := range Labels() {
		out = append(out, Entry{Label: l, Advisory: c.advice[l]})
	}
	return out
}
