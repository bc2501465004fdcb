package core

import "strings"

// DefaultIcon is returned when no keyword matches.
const DefaultIcon = "💰"

// iconTable is scanned in order; the first keyword contained in the
// category name wins, so "food" beats "restaurant" for "restaurant food".
var iconTable = []struct {
	keyword string
	icon    string
}{
	{"food", "🍽️"},
	{"transport", "🚗"},
	{"shopping", "🛒"},
	{"entertainment", "🎬"},
	{"health", "🏥"},
	{"education", "📚"},
	{"utilities", "💡"},
	{"rent", "🏠"},
	{"salary", "💰"},
	{"investment", "📈"},
	{"gift", "🎁"},
	{"travel", "✈️"},
	{"gas", "⛽"},
	{"groceries", "🛒"},
	{"restaurant", "🍽️"},
	{"coffee", "☕"},
	{"gym", "💪"},
	{"medicine", "💊"},
	{"clothes", "👕"},
	{"phone", "📱"},
	{"internet", "🌐"},
}

// SuggestIcon maps a category name to an emoji icon.
func SuggestIcon(categoryName string) string {
	name := strings.ToLower(categoryName)
	for _, e := range iconTable {
		if strings.Contains(name, e.keyword) {
			return e.icon
		}
	}
	return DefaultIcon
}
