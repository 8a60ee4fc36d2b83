package models

import "time"

const (
	// AdminPIN unlocks admin mode in the view. It is not an access control.
	AdminPIN = "1712"

	// MenuCollection is the table that holds MenuItem records.
	MenuCollection = "menu_items"

	// NewItemIDPrefix prefixes the timestamp of operator-created items.
	NewItemIDPrefix = "item_"

	DefaultSessionIdleTTL = 2 * time.Hour
	DefaultSnapshotTTL    = 24 * time.Hour
	DefaultHTTPAddr       = ":8080"
	DefaultAssistantModel = "gemini-3-flash-preview"
)

// Operator-facing alert texts.
const (
	AlertAvailabilityFailed = "שגיאה בעדכון זמינות"
	AlertWrongPassword      = "סיסמה שגויה"
	AlertSaveFailed         = "שגיאה בשמירת הפריט"
	AlertAddFailed          = "שגיאה בהוספת פריט"
	AlertDeleteFailed       = "שגיאה במחיקת הפריט"
	AlertLinkCopied         = "הקישור הועתק!"
)
