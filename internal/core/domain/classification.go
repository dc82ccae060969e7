package domain

// Category is the structural class a file name falls into.
type Category string

// Available categories.
const (
	// CategoryNone is the zero value of an unmatched classification.
	CategoryNone Category = ""

	// CategoryGeneric is the single category of the generic handler.
	CategoryGeneric Category = "generic"

	// CategoryNearRealTime is a near-real-time product.
	CategoryNearRealTime Category = "near_real_time"

	// CategoryDelayedMode is a delayed-mode product.
	CategoryDelayedMode Category = "delayed_mode"

	// CategoryDelayedModeYearly is a yearly archive of delayed-mode products.
	CategoryDelayedModeYearly Category = "delayed_mode_yearly"
)

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGeneric, CategoryNearRealTime, CategoryDelayedMode, CategoryDelayedModeYearly:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Well-known extracted field names.
const (
	// FieldYear is the 4-digit collection year.
	FieldYear = "year"

	// FieldProductCode is the category tag found in the file name (e.g. NRT00).
	FieldProductCode = "product_code"
)

// Classification is the result of matching a file name against a ruleset.
// When Matched is false no other field is meaningful.
type Classification struct {
	// Matched reports whether any pattern matched.
	Matched bool

	// Category is the class implied by the first matching pattern.
	Category Category

	// Fields holds values extracted from the file name.
	Fields map[string]string
}

// NoMatch returns the classification of an unrecognised file name.
func NoMatch() Classification {
	return Classification{}
}

// Matched builds a positive classification.
func Matched(category Category, fields map[string]string) Classification {
	if fields == nil {
		fields = map[string]string{}
	}
	return Classification{
		Matched:  true,
		Category: category,
		Fields:   fields,
	}
}

// Field returns an extracted field, or empty if absent.
func (c Classification) Field(name string) string {
	if c.Fields == nil {
		return ""
	}
	return c.Fields[name]
}
