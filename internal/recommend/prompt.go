package recommend

import (
	"fmt"
	"strings"

	"indigo/internal/models"
)

// BuildPrompt formats the barista prompt for a mood and the available items.
// Unavailable items are dropped here as well so callers cannot leak them.
func BuildPrompt(mood string, items []models.MenuItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range models.AvailableOnly(items) {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", item.Name, item.Category, item.Description))
	}

	var b strings.Builder
	b.WriteString("You are the \"Indigo Barista\", an expert at Indigo Coffee.\n")
	fmt.Fprintf(&b, "The customer is feeling: \"%s\".\n", mood)
	b.WriteString("Our available menu is:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
	b.WriteString("Recommend 2 items from the menu that fit this mood. Explain why in a poetic, premium, yet friendly way in Hebrew.\n")
	b.WriteString("Keep it short and appetizing. Focus on the experience.")
	return b.String()
}
