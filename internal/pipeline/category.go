package pipeline

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"stockcount/internal/util"
)

const UncategorizedLabel = "Uncategorized"

var categoryKeywords = map[string]string{
	"milk": "Dairy", "cheese": "Dairy", "yogurt": "Dairy", "yoghurt": "Dairy", "butter": "Dairy", "cream": "Dairy", "labneh": "Dairy",
	"juice": "Beverages", "water": "Beverages", "soda": "Beverages", "cola": "Beverages", "tea": "Beverages", "coffee": "Beverages", "drink": "Beverages",
	"bread": "Bakery", "toast": "Bakery", "cake": "Bakery", "croissant": "Bakery", "biscuit": "Bakery",
	"chips": "Snacks", "chocolate": "Snacks", "candy": "Snacks", "wafer": "Snacks", "nuts": "Snacks",
	"rice": "Grocery", "pasta": "Grocery", "flour": "Grocery", "sugar": "Grocery", "oil": "Grocery", "salt": "Grocery",
	"chicken": "Meat & Poultry", "beef": "Meat & Poultry", "meat": "Meat & Poultry", "sausage": "Meat & Poultry",
	"detergent": "Cleaning", "bleach": "Cleaning", "cleaner": "Cleaning", "dishwashing": "Cleaning",
	"shampoo": "Personal Care", "soap": "Personal Care", "toothpaste": "Personal Care", "deodorant": "Personal Care",
	"diaper": "Baby", "diapers": "Baby", "wipes": "Baby",
}

var (
	reSizeToken = regexp.MustCompile(`^\d*(?:ml|l|lt|ltr|g|gm|gr|kg|mg|cl|oz|pcs|pc|x|pk|pack)?$`)
	unitWords   = map[string]struct{}{
		"ml": {}, "l": {}, "lt": {}, "ltr": {}, "g": {}, "gm": {}, "gr": {}, "kg": {}, "mg": {}, "cl": {},
		"oz": {}, "pcs": {}, "pc": {}, "pk": {}, "pack": {}, "x": {}, "new": {}, "offer": {},
	}
)

// ExtractCategory derives a category from a free-text product name: a known
// keyword wins, otherwise the first word that is not a size or unit.
func ExtractCategory(name string) string {
	words := util.Words(name)
	for _, w := range words {
		lw := strings.ToLower(w)
		if cat, ok := categoryKeywords[lw]; ok {
			return cat
		}
		if cat, ok := categoryKeywords[strings.TrimSuffix(lw, "s")]; ok && len(lw) > 3 {
			return cat
		}
	}
	for _, w := range words {
		lw := strings.ToLower(w)
		if util.CountLetters(w) < 2 || reSizeToken.MatchString(lw) {
			continue
		}
		if _, unit := unitWords[lw]; unit {
			continue
		}
		return cases.Title(language.Und).String(lw)
	}
	return UncategorizedLabel
}
