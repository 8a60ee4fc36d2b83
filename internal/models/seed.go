package models

var seedMenu = []MenuItem{
	// כריכים
	{ID: "s1", Name: "כריך מוצרלה", Price: "37", Category: CategorySandwiches, Description: "לחם פוקאצ'ה עם פסטו, עגבניות, מוצרלה ובלסמי מצומצם", Available: true, Image: "🥪"},
	{ID: "s2", Name: "כריך קממבר", Price: "35", Category: CategorySandwiches, Description: "לחם פרצל עם גבינת קממבר, ריבת בצל, חסה לליק ואגוזי מלך", Available: true, Image: "🥨"},
	{ID: "s3", Name: "בייגל לאקס", Price: "42", Category: CategorySandwiches, Description: "בייגל עם גבינת שמנת, סלמון כבוש, בצל מוחמץ וחסה לליק", Available: true, Image: "🥯"},
	{ID: "s4", Name: "טוסט פסטו צ'דר", Price: "33", Category: CategorySandwiches, Description: "טוסט בלחם קסטן עם פסטו וגבינת צ'דר", Available: true, Image: "🍞"},
	{ID: "s5", Name: "כריך עיזים", Price: "35", Category: CategorySandwiches, Description: "ג'בטה דגנים בציפוי פיצוחים, גבינת עיזים ואורוגולה", Available: true, Image: "🥖"},

	// מאפים בעבודת יד
	{ID: "p1", Name: "קוראסון חמאה", Price: "18", Category: CategoryPastries, Available: true, Image: "🥐"},
	{ID: "p2", Name: "קוראסון נוטלה", Price: "26", Category: CategoryPastries, Available: true, Image: "🍫"},
	{ID: "p3", Name: "קוראסון קינדר", Price: "27", Category: CategoryPastries, Available: true, Image: "🍬"},
	{ID: "p4", Name: "קוראסון פיסטוק", Price: "27", Category: CategoryPastries, Available: true, Image: "💚"},
	{ID: "p5", Name: "סינבון בריוש", Price: "23", Category: CategoryPastries, Available: true, Image: "🧁"},
	{ID: "p6", Name: "בריוש שוקולד", Price: "28", Category: CategoryPastries, Available: true, Image: "🍩"},
	{ID: "p7", Name: "שבלול תרד ופטה", Price: "21", Category: CategoryPastries, Available: true, Image: "🌿"},

	// ספיישל אסייתי
	{ID: "a1", Name: "אוניגירי בעבודת יד", Price: "15", Category: CategoryAsian, Description: "אורז, אצה, טונה ורוטב ספייסי מיונז בצד", Available: true, Image: "🍙"},
	{ID: "a2", Name: "לימונדת היביסקוס", Price: "19", Category: CategoryAsian, Description: "תה היביסקוס, סודה ולימונדה", Available: true, Image: "🌺"},
	{ID: "a3", Name: "מאצ'ה", Price: "18", Category: CategoryAsian, Description: "תה ירוק וחלב לבחירה", Available: true, Image: "🍵"},

	// קינוחים
	{ID: "d1", Name: "עוגיות עבודת יד", Price: "16", Category: CategoryDesserts, Available: true, Image: "🍪"},
	{ID: "d2", Name: "כדור שוקולד", Price: "5", Category: CategoryDesserts, Available: true, Image: "🟤"},
	{ID: "d3", Name: "פאי לימון", Price: "30", Category: CategoryDesserts, Available: true, Image: "🍋"},
	{ID: "d4", Name: "טירמיסו", Price: "39", Category: CategoryDesserts, Available: true, Image: "🍮"},
	{ID: "d5", Name: "טארט פיסטוק", Price: "36", Category: CategoryDesserts, Description: "עם פירות יער", Available: true, Image: "🍰"},
	{ID: "d6", Name: "עוגת גזר", Price: "34", Category: CategoryDesserts, Available: true, Image: "🥕"},

	// שתייה
	{ID: "dr1", Name: "הפוך", Price: "13/15", Category: CategoryDrinks, Description: "קטן / גדול", Available: true, Image: "☕"},
	{ID: "dr2", Name: "אמריקנו חם", Price: "12", Category: CategoryDrinks, Available: true, Image: "☕"},
	{ID: "dr3", Name: "אספרסו", Price: "10", Category: CategoryDrinks, Available: true, Image: "☕"},
	{ID: "dr4", Name: "שוקו קר/חם", Price: "14", Category: CategoryDrinks, Available: true, Image: "🍫"},
	{ID: "dr5", Name: "קפה קר", Price: "14/16", Category: CategoryDrinks, Available: true, Image: "🧊"},
	{ID: "dr6", Name: "אמריקנו קר", Price: "13/15", Category: CategoryDrinks, Available: true, Image: "🧊"},
	{ID: "dr7", Name: "מיץ סחוט", Price: "14", Category: CategoryDrinks, Available: true, Image: "🍊"},
	{ID: "dr8", Name: "שתייה קלה", Price: "10", Category: CategoryDrinks, Available: true, Image: "🥤"},
}

// SeedMenu returns a fresh copy of the starter catalog written into an empty store.
func SeedMenu() []MenuItem {
	return CloneItems(seedMenu)
}
