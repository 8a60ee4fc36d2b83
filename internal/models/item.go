package models

// MenuItem is one row of the menu catalog. Price is a display string and may
// carry several values ("13/15"); it is never parsed.
type MenuItem struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Price       string      `yaml:"price" json:"price"`
	Category    CategoryKey `yaml:"category" json:"category"`
	Description string      `yaml:"description" json:"description,omitempty"`
	Available   bool        `yaml:"available" json:"available"`
	Image       string      `yaml:"image" json:"image"`
}

// NewItemData is the draft an operator fills in before adding an item.
type NewItemData struct {
	Name        string      `json:"name"`
	Price       string      `json:"price"`
	Description string      `json:"description"`
	Image       string      `json:"image"`
	Category    CategoryKey `json:"category"`
}

// EmptyNewItem is the draft used when nothing has been typed yet.
func EmptyNewItem() NewItemData {
	return NewItemData{Category: CategoryDrinks}
}

// AdminView is the modal discriminator. Edit, add and delete dialogs are
// driven by their own target fields instead.
type AdminView string

const (
	AdminViewNone   AdminView = "NONE"
	AdminViewPinPad AdminView = "PIN_PAD"
)

// AvailableOnly returns the items a customer may see, preserving order.
func AvailableOnly(items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.Available {
			out = append(out, item)
		}
	}
	return out
}

// CloneItems returns a copy of items that shares no backing array.
func CloneItems(items []MenuItem) []MenuItem {
	if items == nil {
		return nil
	}
	out := make([]MenuItem, len(items))
	copy(out, items)
	return out
}
