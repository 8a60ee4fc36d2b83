package view

import "indigo/internal/models"

// State is everything a renderer needs. Values returned by Controller.State
// are copies and may be kept or mutated freely.
type State struct {
	Items   []models.MenuItem
	Loading bool

	AdminMode       bool
	ActiveAdminView models.AdminView
	PinInput        string

	// Edit, add and delete dialogs are open while their target is set.
	EditingItem      *models.MenuItem
	AddingToCategory models.CategoryKey
	ItemToDelete     *models.MenuItem
	NewItem          models.NewItemData

	AIChatOpen bool
	AIMood     string
	AIResponse string
	AILoading  bool
}

func initialState() State {
	return State{
		Items:           []models.MenuItem{},
		Loading:         true,
		ActiveAdminView: models.AdminViewNone,
		NewItem:         models.EmptyNewItem(),
	}
}

func (s State) clone() State {
	out := s
	out.Items = models.CloneItems(s.Items)
	if s.EditingItem != nil {
		item := *s.EditingItem
		out.EditingItem = &item
	}
	if s.ItemToDelete != nil {
		item := *s.ItemToDelete
		out.ItemToDelete = &item
	}
	return out
}

// PinPadOpen reports whether the PIN modal is showing.
func (s State) PinPadOpen() bool {
	return s.ActiveAdminView == models.AdminViewPinPad
}

// VisibleItems returns the items of a category the current viewer may see,
// in snapshot order.
func (s State) VisibleItems(category models.CategoryKey) []models.MenuItem {
	out := []models.MenuItem{}
	for _, item := range s.Items {
		if item.Category != category {
			continue
		}
		if s.AdminMode || item.Available {
			out = append(out, item)
		}
	}
	return out
}

func (s State) findItem(id string) (models.MenuItem, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return models.MenuItem{}, false
}
