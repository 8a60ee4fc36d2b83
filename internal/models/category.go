package models

// CategoryKey identifies a menu section. The set is closed.
type CategoryKey string

const (
	CategorySandwiches CategoryKey = "sandwiches"
	CategoryPastries   CategoryKey = "pastries"
	CategoryAsian      CategoryKey = "asian"
	CategoryDesserts   CategoryKey = "desserts"
	CategoryDrinks     CategoryKey = "drinks"
)

// Category is a catalog entry: display label and the icon new items start with.
type Category struct {
	Key   CategoryKey
	Label string
	Icon  string
}

// Categories lists every section in display order.
var Categories = []Category{
	{Key: CategorySandwiches, Label: "כריכים", Icon: "🥪"},
	{Key: CategoryPastries, Label: "מאפים בעבודת יד", Icon: "🥐"},
	{Key: CategoryAsian, Label: "ספיישל אסייתי", Icon: "🥢"},
	{Key: CategoryDesserts, Label: "קינוחים", Icon: "🍰"},
	{Key: CategoryDrinks, Label: "קפה ושתייה", Icon: "☕"},
}

func lookupCategory(key CategoryKey) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// IsValidCategory reports whether key belongs to the fixed set.
func IsValidCategory(key CategoryKey) bool {
	_, ok := lookupCategory(key)
	return ok
}

// CategoryLabel returns the display label, or "" for unknown keys.
func CategoryLabel(key CategoryKey) string {
	c, _ := lookupCategory(key)
	return c.Label
}

// DefaultIcon returns the icon glyph for a category, or "" for unknown keys.
func DefaultIcon(key CategoryKey) string {
	c, _ := lookupCategory(key)
	return c.Icon
}
