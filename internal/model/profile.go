package model

import (
	"fmt"
	"strings"
)

// Condition is the buyer's new/used preference
type Condition string

const (
	ConditionNew    Condition = "new"
	ConditionUsed   Condition = "used"
	ConditionEither Condition = "either"
)

// Valid reports whether c is a known condition
func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionEither:
		return true
	}
	return false
}

// BodyType is the preferred body style. BodyTypeSUVOrMPV is the hint
// produced by family-oriented answers and matches either style.
type BodyType string

const (
	BodyTypeHatchback BodyType = "hatchback"
	BodyTypeSedan     BodyType = "sedan"
	BodyTypeSUV       BodyType = "suv"
	BodyTypeMPV       BodyType = "mpv"
	BodyTypeWagon     BodyType = "wagon"
	BodyTypeSports    BodyType = "sports"
	BodyTypeSUVOrMPV  BodyType = "suv_or_mpv"
)

// Valid reports whether b is a known body type
func (b BodyType) Valid() bool {
	switch b {
	case BodyTypeHatchback, BodyTypeSedan, BodyTypeSUV, BodyTypeMPV,
		BodyTypeWagon, BodyTypeSports, BodyTypeSUVOrMPV:
		return true
	}
	return false
}

// Matches reports whether a listing body style satisfies the preference
func (b BodyType) Matches(listingBody string) bool {
	listingBody = strings.ToLower(strings.TrimSpace(listingBody))
	if listingBody == "" {
		return false
	}
	if b == BodyTypeSUVOrMPV {
		return listingBody == string(BodyTypeSUV) || listingBody == string(BodyTypeMPV)
	}
	return listingBody == string(b)
}

// DrivingEnvironment describes where the buyer mostly drives
type DrivingEnvironment string

const (
	DrivingCity    DrivingEnvironment = "city"
	DrivingHighway DrivingEnvironment = "highway"
	DrivingMixed   DrivingEnvironment = "mixed"
)

// Valid reports whether d is a known driving environment
func (d DrivingEnvironment) Valid() bool {
	switch d {
	case DrivingCity, DrivingHighway, DrivingMixed:
		return true
	}
	return false
}

// Field names a profile field
type Field string

const (
	FieldBudget             Field = "budget"
	FieldFamilySize         Field = "family_size"
	FieldCondition          Field = "condition_preference"
	FieldBodyType           Field = "body_type"
	FieldDrivingEnvironment Field = "driving_environment"
)

// Profile is the structured buyer profile. Every field is optional until
// set. The same type carries the partial profile extracted from one answer,
// in which case only the detected fields are non-nil.
type Profile struct {
	BudgetMin          *float64            `json:"budget_min,omitempty"`
	BudgetMax          *float64            `json:"budget_max,omitempty"`
	FamilySize         *int                `json:"family_size,omitempty"`
	Condition          *Condition          `json:"condition_preference,omitempty"`
	BodyType           *BodyType           `json:"body_type,omitempty"`
	DrivingEnvironment *DrivingEnvironment `json:"driving_environment,omitempty"`
}

// IsEmpty reports whether no field is set
func (p *Profile) IsEmpty() bool {
	return p == nil || len(p.Fields()) == 0
}

// Has reports whether field f is set
func (p *Profile) Has(f Field) bool {
	if p == nil {
		return false
	}
	switch f {
	case FieldBudget:
		return p.BudgetMax != nil
	case FieldFamilySize:
		return p.FamilySize != nil
	case FieldCondition:
		return p.Condition != nil
	case FieldBodyType:
		return p.BodyType != nil
	case FieldDrivingEnvironment:
		return p.DrivingEnvironment != nil
	}
	return false
}

// Fields lists the set fields in canonical order
func (p *Profile) Fields() []Field {
	var fields []Field
	for _, f := range []Field{FieldBudget, FieldFamilySize, FieldCondition, FieldBodyType, FieldDrivingEnvironment} {
		if p.Has(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// Only returns a copy of p holding just field f
func (p *Profile) Only(f Field) *Profile {
	out := &Profile{}
	if p == nil {
		return out
	}
	switch f {
	case FieldBudget:
		out.BudgetMin, out.BudgetMax = p.BudgetMin, p.BudgetMax
	case FieldFamilySize:
		out.FamilySize = p.FamilySize
	case FieldCondition:
		out.Condition = p.Condition
	case FieldBodyType:
		out.BodyType = p.BodyType
	case FieldDrivingEnvironment:
		out.DrivingEnvironment = p.DrivingEnvironment
	}
	return out
}

// Clone returns a deep copy
func (p *Profile) Clone() *Profile {
	if p == nil {
		return &Profile{}
	}
	out := &Profile{}
	if p.BudgetMin != nil {
		out.BudgetMin = Float64(*p.BudgetMin)
	}
	if p.BudgetMax != nil {
		out.BudgetMax = Float64(*p.BudgetMax)
	}
	if p.FamilySize != nil {
		out.FamilySize = Int(*p.FamilySize)
	}
	if p.Condition != nil {
		c := *p.Condition
		out.Condition = &c
	}
	if p.BodyType != nil {
		b := *p.BodyType
		out.BodyType = &b
	}
	if p.DrivingEnvironment != nil {
		d := *p.DrivingEnvironment
		out.DrivingEnvironment = &d
	}
	return out
}

// Validate checks enum membership and the budget ordering invariant
func (p *Profile) Validate() error {
	if p == nil {
		return nil
	}
	if p.BudgetMin != nil && *p.BudgetMin < 0 {
		return fmt.Errorf("budget_min cannot be negative")
	}
	if p.BudgetMax != nil && *p.BudgetMax <= 0 {
		return fmt.Errorf("budget_max must be positive")
	}
	if p.BudgetMin != nil && p.BudgetMax != nil && *p.BudgetMin > *p.BudgetMax {
		return fmt.Errorf("budget_min (%.0f) cannot be greater than budget_max (%.0f)", *p.BudgetMin, *p.BudgetMax)
	}
	if p.FamilySize != nil && (*p.FamilySize < 1 || *p.FamilySize > 9) {
		return fmt.Errorf("family_size must be between 1 and 9")
	}
	if p.Condition != nil && !p.Condition.Valid() {
		return fmt.Errorf("invalid condition_preference: %s", *p.Condition)
	}
	if p.BodyType != nil && !p.BodyType.Valid() {
		return fmt.Errorf("invalid body_type: %s", *p.BodyType)
	}
	if p.DrivingEnvironment != nil && !p.DrivingEnvironment.Valid() {
		return fmt.Errorf("invalid driving_environment: %s", *p.DrivingEnvironment)
	}
	return nil
}

// Summary renders the profile as a short human-readable line
func (p *Profile) Summary() string {
	if p.IsEmpty() {
		return "no stated preferences"
	}
	var parts []string
	switch {
	case p.BudgetMin != nil && p.BudgetMax != nil:
		parts = append(parts, fmt.Sprintf("budget S$%.0f-S$%.0f", *p.BudgetMin, *p.BudgetMax))
	case p.BudgetMax != nil:
		parts = append(parts, fmt.Sprintf("budget up to S$%.0f", *p.BudgetMax))
	}
	if p.FamilySize != nil {
		parts = append(parts, fmt.Sprintf("family of %d", *p.FamilySize))
	}
	if p.Condition != nil {
		parts = append(parts, fmt.Sprintf("%s car", *p.Condition))
	}
	if p.BodyType != nil {
		parts = append(parts, fmt.Sprintf("body type %s", strings.ReplaceAll(string(*p.BodyType), "_", " ")))
	}
	if p.DrivingEnvironment != nil {
		parts = append(parts, fmt.Sprintf("mostly %s driving", *p.DrivingEnvironment))
	}
	return strings.Join(parts, ", ")
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// ConditionPtr returns a pointer to c
func ConditionPtr(c Condition) *Condition { return &c }

// BodyTypePtr returns a pointer to b
func BodyTypePtr(b BodyType) *BodyType { return &b }

// DrivingPtr returns a pointer to d
func DrivingPtr(d DrivingEnvironment) *DrivingEnvironment { return &d }
