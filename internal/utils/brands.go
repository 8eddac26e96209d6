package utils

import (
	"strings"
)

// brandAliases maps colloquial or abbreviated make names to the canonical
// lower-case make used in the dataset
var brandAliases = map[string]string{
	"merc":          "mercedes-benz",
	"mercedes":      "mercedes-benz",
	"benz":          "mercedes-benz",
	"mercedes benz": "mercedes-benz",
	"beemer":        "bmw",
	"bimmer":        "bmw",
	"vw":            "volkswagen",
	"volks":         "volkswagen",
	"chevy":         "chevrolet",
	"landrover":     "land rover",
	"range rover":   "land rover",
	"alfa":          "alfa romeo",
	"mini cooper":   "mini",
	"byd auto":      "byd",
}

// NormalizeBrand returns the canonical lower-case make for a raw make string
func NormalizeBrand(raw string) string {
	m := strings.ToLower(strings.TrimSpace(raw))
	m = strings.Join(strings.Fields(m), " ")
	if canonical, ok := brandAliases[m]; ok {
		return canonical
	}
	return m
}
