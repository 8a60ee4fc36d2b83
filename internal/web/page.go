package web

import (
	"strings"

	"indigo/internal/models"
	"indigo/internal/view"
)

// Page is everything the menu template renders. It is built from a view
// state alone.
type Page struct {
	Loading   bool
	AdminMode bool
	Banner    *Banner
	Sections  []Section

	PinPad    *PinPad
	Edit      *EditDialog
	Add       *AddDialog
	Delete    *DeleteDialog
	Assistant *AssistantDialog

	// Alerts are shown as blocking dialogs on load.
	Alerts []string
}

// Banner is the admin-mode strip with the page address to copy.
type Banner struct {
	CopyURL     string
	CopiedAlert string
}

type Section struct {
	Key    models.CategoryKey
	Label  string
	Items  []ItemCard
	CanAdd bool
}

type ItemCard struct {
	ID          string
	Name        string
	Description string
	Price       string
	Image       string
	SoldOut     bool
	// Toggleable items flip availability when clicked.
	Toggleable   bool
	ShowControls bool
}

type PinPad struct {
	Input string
}

type EditDialog struct {
	ID          string
	Name        string
	Price       string
	Description string
}

type AddDialog struct {
	Category models.CategoryKey
	Title    string
	Draft    models.NewItemData
}

type DeleteDialog struct {
	ID   string
	Name string
}

type AssistantDialog struct {
	Mood      string
	Response  string
	Loading   bool
	ShowIntro bool
	CanAsk    bool
}

// BuildPage maps a view state onto the page model. baseURL is the address
// offered by the admin banner.
func BuildPage(s view.State, baseURL string) Page {
	if s.Loading {
		return Page{Loading: true}
	}

	page := Page{AdminMode: s.AdminMode}
	if s.AdminMode {
		page.Banner = &Banner{CopyURL: baseURL, CopiedAlert: models.AlertLinkCopied}
	}

	for _, category := range models.Categories {
		items := s.VisibleItems(category.Key)
		if !s.AdminMode && len(items) == 0 {
			continue
		}
		section := Section{
			Key:    category.Key,
			Label:  category.Label,
			Items:  make([]ItemCard, 0, len(items)),
			CanAdd: s.AdminMode,
		}
		for _, item := range items {
			section.Items = append(section.Items, itemCard(item, s.AdminMode))
		}
		page.Sections = append(page.Sections, section)
	}

	if s.PinPadOpen() {
		page.PinPad = &PinPad{Input: s.PinInput}
	}
	if s.EditingItem != nil {
		page.Edit = &EditDialog{
			ID:          s.EditingItem.ID,
			Name:        s.EditingItem.Name,
			Price:       s.EditingItem.Price,
			Description: s.EditingItem.Description,
		}
	}
	if s.AddingToCategory != "" {
		page.Add = &AddDialog{
			Category: s.AddingToCategory,
			Title:    "הוספת פריט ל" + models.CategoryLabel(s.AddingToCategory),
			Draft:    s.NewItem,
		}
	}
	if s.ItemToDelete != nil {
		page.Delete = &DeleteDialog{ID: s.ItemToDelete.ID, Name: s.ItemToDelete.Name}
	}
	if s.AIChatOpen {
		page.Assistant = &AssistantDialog{
			Mood:      s.AIMood,
			Response:  s.AIResponse,
			Loading:   s.AILoading,
			ShowIntro: s.AIResponse == "" && !s.AILoading,
			CanAsk:    !s.AILoading && strings.TrimSpace(s.AIMood) != "",
		}
	}
	return page
}

func itemCard(item models.MenuItem, admin bool) ItemCard {
	return ItemCard{
		ID:           item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        "₪" + item.Price,
		Image:        item.Image,
		SoldOut:      !item.Available,
		Toggleable:   admin,
		ShowControls: admin,
	}
}
