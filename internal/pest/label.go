// Package pest holds the closed set of pest categories the classifiers emit
// scores for, and the static treatment advice keyed by them.
package pest

import (
	"fmt"
)

// Label identifies one pest category. The numeric value is the index of the
// category in every model's score vector.
type Label int

const (
	Aphids Label = iota
	Armyworms
	BrownMarmoratedStinkBugs
	CabbageLoopers
	CitrusCanker
	ColoradoPotatoBeetles
	CornBorers
	CornEarworms
	FallArmyworms
	FruitFlies
	SpiderMites
	Thrips
	TomatoHornworms
	WesternCornRootworms

	labelCount
)

var labelNames = [labelCount]string{
	Aphids:                   "Aphids",
	Armyworms:                "Armyworms",
	BrownMarmoratedStinkBugs: "Brown Marmorated Stink Bugs",
	CabbageLoopers:           "Cabbage Loopers",
	CitrusCanker:             "Citrus Canker",
	ColoradoPotatoBeetles:    "Colorado Potato Beetles",
	CornBorers:               "Corn Borers",
	CornEarworms:             "Corn Earworms",
	FallArmyworms:            "Fall Armyworms",
	FruitFlies:               "Fruit Flies",
	SpiderMites:              "Spider Mites",
	Thrips:                   "Thrips",
	TomatoHornworms:          "Tomato Hornworms",
	WesternCornRootworms:     "Western Corn Rootworms",
}

// Count is the number of categories, i.e. the required length of a score vector.
const Count = int(labelCount)

// Labels returns all categories in score-vector order.
func Labels() []Label {
	out := make([]Label, Count)
	for i := range out {
		out[i] = Label(i)
	}
	return out
}

// Valid reports whether l is a member of the enumeration.
func (l Label) Valid() bool {
	return l >= 0 && l < labelCount
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// MarshalText renders the human-readable name so labels serialize as strings.
func (l Label) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid pest label %d", int(l))
	}
	return []byte(labelNames[l]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (l *Label) UnmarshalText(b []byte) error {
	parsed, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel maps a display name back to its Label. Matching is exact.
func ParseLabel(name string) (Label, error) {
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pest label %q", name)
}
