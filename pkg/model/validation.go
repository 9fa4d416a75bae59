package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var errRequired = errors.New("required")

// Rules is the compiled form of a field's validation constraints.
type Rules struct {
	required bool
	min      *float64
	max      *float64
	minLen   *int
	maxLen   *int
	pattern  *regexp.Regexp
}

// CompileRules turns the declared validations of a field into Rules. Malformed
// parameters are ignored; an invalid pattern is reported as an error.
func CompileRules(field Field) (Rules, error) {
	rules := Rules{required: field.Required}
	for _, v := range field.Validations {
		switch v.Kind {
		case ValidationRuleMin:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.min = &val
			}
		case ValidationRuleMax:
			if val, ok := parseFloat(v.Params["value"]); ok {
				rules.max = &val
			}
		case ValidationRuleMinLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.minLen = &val
			}
		case ValidationRuleMaxLength:
			if val, ok := parseInt(v.Params["value"]); ok {
				rules.maxLen = &val
			}
		case ValidationRulePattern:
			if expr := v.Params["pattern"]; expr != "" {
				re, err := regexp.Compile(expr)
				if err != nil {
					return Rules{}, fmt.Errorf("model: field %q pattern: %w", field.Name, err)
				}
				rules.pattern = re
			}
		}
	}
	return rules, nil
}

// Validate checks a single field value against the rules.
func (r Rules) Validate(value any) error {
	switch v := value.(type) {
	case nil:
		if r.required {
			return errRequired
		}
		return nil
	case string:
		return r.validateString(v)
	case bool:
		return nil
	case []any:
		return r.validateArray(v)
	case []string:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return r.validateArray(items)
	default:
		if n, ok := toFloat(v); ok {
			return r.validateNumber(n)
		}
		return nil
	}
}

func (r Rules) validateString(value string) error {
	if strings.TrimSpace(value) == "" {
		if r.required {
			return errRequired
		}
		return nil
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("min length %d", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("max length %d", *r.maxLen)
	}
	if r.pattern != nil && !r.pattern.MatchString(value) {
		return errors.New("does not match required pattern")
	}
	return nil
}

func (r Rules) validateNumber(v float64) error {
	if r.min != nil && v < *r.min {
		return fmt.Errorf("min %v", *r.min)
	}
	if r.max != nil && v > *r.max {
		return fmt.Errorf("max %v", *r.max)
	}
	return nil
}

func (r Rules) validateArray(value []any) error {
	if r.required && len(value) == 0 {
		return errRequired
	}
	if r.minLen != nil && len(value) < *r.minLen {
		return fmt.Errorf("min length %d", *r.minLen)
	}
	if r.maxLen != nil && len(value) > *r.maxLen {
		return fmt.Errorf("max length %d", *r.maxLen)
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case interface{ Float64() (float64, error) }:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func parseFloat(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	return val, err == nil
}

func parseInt(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	return val, err == nil
}
