package aggregator

import "strings"

// CityDelimiter separates city names in free-text input.
const CityDelimiter = ", "

// SplitCities splits text on CityDelimiter only; names are not trimmed.
func SplitCities(text string) []string {
	return strings.Split(text, CityDelimiter)
}
