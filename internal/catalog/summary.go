package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Summary renders the natural language description that gets embedded for
// vector search. It intentionally reads like prose so the embedding captures
// category, brand, origin, reviews and price together.
func Summary(p Product) string {
	manufacturer := "Manufacturer information not available"
	if p.Manufacturer != nil && p.Manufacturer.Country != "" {
		manufacturer = "Made in " + p.Manufacturer.Country
	}

	categories := "No categories"
	if len(p.Tags) > 0 {
		categories = strings.Join(p.Tags, ", ")
	}

	reviews := make([]string, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, fmt.Sprintf("Rated %s on %s: %s", formatNumber(r.Rating), r.CreatedAt, r.Comment))
	}
	reviewText := strings.Join(reviews, " ")
	if reviewText == "" {
		reviewText = "No reviews yet"
	}

	brand := p.Brand
	if brand == "" {
		brand = "Unknown brand"
	}

	return fmt.Sprintf("%s (%s) by %s. %s. Categories: %s. Reviews: %s. %s",
		p.Name, p.Category, brand, manufacturer, categories, reviewText, priceSummary(p.Price))
}

func priceSummary(price Price) string {
	base := formatNumber(price.Amount) + " " + price.Currency
	discount := "No discounts available"
	if price.DiscountedAmount != nil && *price.DiscountedAmount > 0 {
		discount = fmt.Sprintf("Discounted: %s %s", formatNumber(*price.DiscountedAmount), price.Currency)
		if price.DiscountPercentage != nil && *price.DiscountPercentage > 0 {
			discount += fmt.Sprintf(" (%s%% off)", formatNumber(*price.DiscountPercentage))
		}
	}
	return fmt.Sprintf("Price: %s. %s.", base, discount)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
