package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"caradvisor/internal/model"
)

// minBudget is the smallest amount read as a car budget. Smaller numbers
// are family sizes, years or noise.
const minBudget = 5000

var (
	amountPattern = `\$?\s*(\d[\d,]*(?:\.\d+)?)\s*(k|m|mil|million)?`
	budgetRangeRe  = regexp.MustCompile(`(?i)(?:between\s+)?` + amountPattern + `\s*(?:-|–|to|and)\s*` + amountPattern + `\b`)
	budgetSingleRe = regexp.MustCompile(`(?i)` + amountPattern + `\b`)
	distanceRe     = regexp.MustCompile(`(?i)^\s*(km|kilomet|mile)`)
	integerRe      = regexp.MustCompile(`\b\d+\b`)
	andRe          = regexp.MustCompile(`(?i)\band\b`)
	correctionRe   = regexp.MustCompile(`(?i)\b(actually|instead|chang(?:e|ed|ing))\b`)

	newRe    = regexp.MustCompile(`(?i)\b(brand[- ]new|new)\b`)
	usedRe   = regexp.MustCompile(`(?i)\b(used|second[- ]?hand|pre[- ]?owned)\b`)
	eitherRe = regexp.MustCompile(`(?i)\b(either|both|no preference|don'?t mind|doesn'?t matter|any)\b`)
)

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9,
	"alone": 1, "myself": 1, "couple": 2,
}

var numberWordRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|alone|myself|couple)\b`)

// keywordRule maps a keyword pattern to a field value. Rules are evaluated
// in table order and the first match wins.
type keywordRule struct {
	pattern *regexp.Regexp
	value   string
}

var bodyTypeRules = []keywordRule{
	{regexp.MustCompile(`(?i)\b(mpv|people[- ]carrier|minivan|7[- ]?seater|seven[- ]seater)\b`), string(model.BodyTypeMPV)},
	{regexp.MustCompile(`(?i)\b(suv|crossover)\b`), string(model.BodyTypeSUV)},
	{regexp.MustCompile(`(?i)\b(sedan|saloon)\b`), string(model.BodyTypeSedan)},
	{regexp.MustCompile(`(?i)\b(hatch|hatchback)\b`), string(model.BodyTypeHatchback)},
	{regexp.MustCompile(`(?i)\b(wagon|estate)\b`), string(model.BodyTypeWagon)},
	{regexp.MustCompile(`(?i)\b(sports?(?: car)?|coupe|convertible|roadster)\b`), string(model.BodyTypeSports)},
	{regexp.MustCompile(`(?i)\b(family|families|kids?|children|child)\b`), string(model.BodyTypeSUVOrMPV)},
}

var drivingRules = []keywordRule{
	{regexp.MustCompile(`(?i)\b(mix|mixed|mixture|city and highway|highway and city)\b`), string(model.DrivingMixed)},
	{regexp.MustCompile(`(?i)\b(highways?|expressways?|long[- ]distance|road ?trips?|malaysia)\b`), string(model.DrivingHighway)},
	{regexp.MustCompile(`(?i)\b(city|town|urban|cbd|downtown|short trips?|errands|school runs?)\b`), string(model.DrivingCity)},
}

// FieldExtractor turns one free-text answer into the profile fields it
// mentions. It never fails: an answer with nothing recognisable yields an
// empty profile.
type FieldExtractor struct{}

// NewFieldExtractor creates a new field extractor
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{}
}

// Extract parses answer in the context of the question state it answers
func (e *FieldExtractor) Extract(answer string, state model.InterviewState) *model.Profile {
	partial := &model.Profile{}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return partial
	}

	budgetMin, budgetMax, spans := extractBudget(answer)
	if budgetMax != nil {
		partial.BudgetMin, partial.BudgetMax = budgetMin, budgetMax
	}

	if size, ok := extractFamilySize(answer, spans, state); ok {
		partial.FamilySize = model.Int(size)
	}

	if cond, ok := extractCondition(answer, state); ok {
		partial.Condition = model.ConditionPtr(cond)
	}

	if v, ok := firstRule(bodyTypeRules, answer); ok {
		partial.BodyType = model.BodyTypePtr(model.BodyType(v))
	}

	if v, ok := firstRule(drivingRules, answer); ok {
		partial.DrivingEnvironment = model.DrivingPtr(model.DrivingEnvironment(v))
	}

	return partial
}

// IsCorrection reports whether answer revises something said earlier, as
// in "actually make it 120k"
func (e *FieldExtractor) IsCorrection(answer string) bool {
	return correctionRe.MatchString(answer)
}

// extractBudget returns the budget bounds and the byte spans consumed by
// the matched amounts
func extractBudget(answer string) (*float64, *float64, [][2]int) {
	for _, m := range budgetRangeRe.FindAllStringSubmatchIndex(answer, -1) {
		if followedByDistance(answer, m[1]) {
			continue
		}
		loUnit, hiUnit := group(answer, m, 2), group(answer, m, 4)
		lo, okLo := parseAmount(answer[m[2]:m[3]], loUnit)
		hi, okHi := parseAmount(answer[m[6]:m[7]], hiUnit)
		if !okLo || !okHi {
			continue
		}
		// a bare "and" only joins a range when introduced by "between";
		// "5 and 80k" is a head count next to a budget
		loEnd := max(m[3], m[5])
		bare := andRe.MatchString(answer[loEnd:m[6]]) &&
			!strings.HasPrefix(strings.ToLower(answer[m[0]:m[1]]), "between")

		// "80-120k": the unit on the upper bound applies to a bare lower bound
		if loUnit == "" && hiUnit != "" && lo < 1000 && !bare {
			lo, _ = parseAmount(answer[m[2]:m[3]], hiUnit)
		}
		// "80k-120": a lower bound unit carries up while the range stays ordered
		if hiUnit == "" && loUnit != "" && hi < 1000 {
			if carried, _ := parseAmount(answer[m[6]:m[7]], loUnit); carried >= lo {
				hi = carried
			}
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo < minBudget {
			continue
		}
		return model.Float64(lo), model.Float64(hi), [][2]int{{m[0], m[1]}}
	}

	for _, m := range budgetSingleRe.FindAllStringSubmatchIndex(answer, -1) {
		if followedByDistance(answer, m[1]) {
			continue
		}
		v, ok := parseAmount(answer[m[2]:m[3]], group(answer, m, 2))
		if !ok || v < minBudget {
			continue
		}
		return model.Float64(math.Round(v * 7 / 10)), model.Float64(v), [][2]int{{m[0], m[1]}}
	}

	return nil, nil, nil
}

// group returns the lower-cased unit suffix captured by the n-th group pair
func group(s string, m []int, n int) string {
	i := n * 2
	if i+1 >= len(m) || m[i] < 0 {
		return ""
	}
	return strings.ToLower(s[m[i]:m[i+1]])
}

func followedByDistance(answer string, end int) bool {
	return distanceRe.MatchString(answer[end:])
}

func parseAmount(digits, unit string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	switch unit {
	case "k":
		v *= 1000
	case "m", "mil", "million":
		v *= 1_000_000
	}
	return v, true
}

func extractFamilySize(answer string, skip [][2]int, state model.InterviewState) (int, bool) {
	for _, loc := range integerRe.FindAllStringIndex(answer, -1) {
		if inSpans(loc, skip) {
			continue
		}
		n, err := strconv.Atoi(answer[loc[0]:loc[1]])
		if err != nil || n < 1 || n > 9 {
			continue
		}
		return n, true
	}

	// number words are only trusted when the question asked for a head count
	if state == model.StateAskFamily {
		if w := numberWordRe.FindString(answer); w != "" {
			return numberWords[strings.ToLower(w)], true
		}
	}
	return 0, false
}

func inSpans(loc []int, spans [][2]int) bool {
	for _, s := range spans {
		if loc[0] >= s[0] && loc[1] <= s[1] {
			return true
		}
	}
	return false
}

func extractCondition(answer string, state model.InterviewState) (model.Condition, bool) {
	hasNew := newRe.MatchString(answer)
	hasUsed := usedRe.MatchString(answer)

	switch {
	case hasNew && hasUsed:
		return model.ConditionEither, true
	case hasNew:
		return model.ConditionNew, true
	case hasUsed:
		return model.ConditionUsed, true
	case state == model.StateAskCondition && eitherRe.MatchString(answer):
		return model.ConditionEither, true
	}
	return "", false
}

func firstRule(rules []keywordRule, answer string) (string, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(answer) {
			return r.value, true
		}
	}
	return "", false
}
