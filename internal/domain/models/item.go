package models

import "fmt"

// Exterior is the wear tier of a skin. Stored as the short code.
type Exterior string

const (
	ExteriorBattleScarred Exterior = "BS"
	ExteriorWellWorn      Exterior = "WW"
	ExteriorFieldTested   Exterior = "FT"
	ExteriorMinimalWear   Exterior = "MW"
	ExteriorFactoryNew    Exterior = "FN"
)

// exteriorNames maps the long form printed on the listing page to the short code.
var exteriorNames = map[string]Exterior{
	"Battle-Scarred": ExteriorBattleScarred,
	"Well-Worn":      ExteriorWellWorn,
	"Field-Tested":   ExteriorFieldTested,
	"Minimal Wear":   ExteriorMinimalWear,
	"Factory New":    ExteriorFactoryNew,
}

func ParseExterior(s string) (Exterior, error) {
	if ext, ok := exteriorNames[s]; ok {
		return ext, nil
	}
	switch Exterior(s) {
	case ExteriorBattleScarred, ExteriorWellWorn, ExteriorFieldTested, ExteriorMinimalWear, ExteriorFactoryNew:
		return Exterior(s), nil
	}
	return "", fmt.Errorf("unknown exterior %q", s)
}

// Item is one marketplace listing. Kind and Exterior are nil together
// for vanilla items and set together otherwise.
type Item struct {
	OrderID    int       `db:"order_id" json:"order_id"`
	Name       string    `db:"name" json:"name"`
	Kind       *string   `db:"kind" json:"kind,omitempty"`
	Exterior   *Exterior `db:"exterior" json:"exterior,omitempty"`
	Price      int       `db:"price" json:"price"`
	HasSold    bool      `db:"has_sold" json:"has_sold"`
	IsStattrak bool      `db:"is_stattrak" json:"is_stattrak"`
}

// String renders the listing the way notifications name it.
func (i Item) String() string {
	if i.Kind == nil {
		return fmt.Sprintf("%s | Vanilla", i.Name)
	}
	if i.Exterior != nil {
		return fmt.Sprintf("%s | %s (%s)", i.Name, *i.Kind, *i.Exterior)
	}
	return fmt.Sprintf("%s | %s", i.Name, *i.Kind)
}

// Snapshot is the full set of listings observed in one poll cycle, keyed by order id.
type Snapshot map[int]Item
