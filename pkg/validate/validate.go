// Package validate provides struct-tag validation for request inputs.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/empty
//	nullable        if empty, skip all remaining rules for this field
//	email           valid email address
//	url             valid http(s) URL
//	min=N           string: min char length | number: min value
//	max=N           string: max char length | number: max value
//	gt=N            number > N
//	gte=N           number >= N
//	lte=N           number <= N
//	in=a,b,c        value must be one of the listed items (must be the last rule)
//
// Numbers include every Go integer and float kind plus decimal.Decimal, so
// money fields can be validated exactly:
//
//	type ProductInput struct {
//	    Name  string          `json:"name"  validate:"required,max=255"`
//	    Price decimal.Decimal `json:"price" validate:"required,gt=0"`
//	    Stock int             `json:"stock" validate:"gte=0"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v any) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	v = indirect(v)
	key, param, _ := strings.Cut(rule, "=")
	raw := stringOf(v)

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}

	case "min", "max":
		limit, err := decimal.NewFromString(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid %s rule.", field, key)
		}
		if n, ok := numberOf(v); ok {
			if key == "min" && n.LessThan(limit) {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
			if key == "max" && n.GreaterThan(limit) {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
			return ""
		}
		l := decimal.NewFromInt(int64(len([]rune(raw))))
		if key == "min" && l.LessThan(limit) {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
		if key == "max" && l.GreaterThan(limit) {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}

	case "gt", "gte", "lte":
		limit, err := decimal.NewFromString(param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid %s rule.", field, key)
		}
		n, ok := numberOf(v)
		if !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
		switch {
		case key == "gt" && !n.GreaterThan(limit):
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		case key == "gte" && n.LessThan(limit):
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		case key == "lte" && n.GreaterThan(limit):
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}

	return ""
}

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func stringOf(v reflect.Value) string {
	if !v.IsValid() || (v.Kind() == reflect.Ptr && v.IsNil()) {
		return ""
	}
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal).String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

// numberOf reports v as a decimal when it holds a numeric kind.
func numberOf(v reflect.Value) (decimal.Decimal, bool) {
	if !v.IsValid() {
		return decimal.Zero, false
	}
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal), true
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromInt(int64(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return decimal.NewFromFloat(v.Float()), true
	}
	return decimal.Zero, false
}

func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	if v.Type() == decimalType {
		return v.Interface().(decimal.Decimal).IsZero()
	}
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(f.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return strings.ToLower(f.Name)
	}
	return name
}

// splitRules splits a tag on commas; "in=" swallows the remainder.
func splitRules(tag string) []string {
	var rules []string
	for tag != "" {
		if strings.HasPrefix(tag, "in=") {
			rules = append(rules, tag)
			break
		}
		rule, rest, _ := strings.Cut(tag, ",")
		if rule = strings.TrimSpace(rule); rule != "" {
			rules = append(rules, rule)
		}
		tag = rest
	}
	return rules
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
