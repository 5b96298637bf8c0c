package csvimport

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeDecimal FieldType = "decimal"
	TypeBool    FieldType = "bool"
)

var (
	trueValues  = []string{"true", "1", "yes", "y", "да"}
	falseValues = []string{"false", "0", "no", "n", "нет"}
)

// ParseBool reads the boolean spellings accepted in import files
func ParseBool(value string) (bool, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	for _, v := range trueValues {
		if lower == v {
			return true, nil
		}
	}
	for _, v := range falseValues {
		if lower == v {
			return false, nil
		}
	}
	return false, fmt.Errorf("invalid boolean value: %s", value)
}

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	MinValue  *decimal.Decimal
	Unique    bool
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Bool sets the field type to boolean
func (b *FieldRuleBuilder) Bool() *FieldRuleBuilder {
	b.rule.Type = TypeBool
	return b
}

// MaxLength sets the maximum length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinValue sets the inclusive lower bound of a decimal field
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Unique requires values of the column to be distinct within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Build returns the rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows according to rules
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int // column -> value -> first row number
	errors      *ErrorCollection
}

// NewFieldValidator creates a new field validator. Rules are applied in the given order.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all fields in a row and reports whether it passed
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, rule.Column)
				ok = false
			}
			continue
		}

		if !v.checkType(row.LineNumber, rule, value) {
			ok = false
			continue
		}

		if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
			v.errors.AddLengthError(row.LineNumber, rule.Column, rule.MaxLength)
			ok = false
		}

		if rule.Unique {
			key := strings.ToLower(value)
			seen := v.uniqueCheck[rule.Column]
			if seen == nil {
				seen = make(map[string]int)
				v.uniqueCheck[rule.Column] = seen
			}
			if first, exists := seen[key]; exists {
				v.errors.AddDuplicateError(row.LineNumber, rule.Column, value, first)
				ok = false
			} else {
				seen[key] = row.LineNumber
			}
		}
	}

	return ok
}

func (v *FieldValidator) checkType(line int, rule FieldRule, value string) bool {
	switch rule.Type {
	case TypeDecimal:
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil {
			v.errors.AddTypeError(line, rule.Column, rule.Type, value)
			return false
		}
		if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
			v.errors.AddRangeError(line, rule.Column, rule.MinValue.String(), value)
			return false
		}
	case TypeBool:
		if _, err := ParseBool(value); err != nil {
			v.errors.AddTypeError(line, rule.Column, rule.Type, value)
			return false
		}
	}
	return true
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}
