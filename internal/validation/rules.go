package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Required fails when the value is absent: nil, blank string, or an empty
// slice/map.
func Required(msg string) Rule {
	if msg == "" {
		msg = "this field is required"
	}
	return func(value any, _ Subject) string {
		if isEmpty(value) {
			return msg
		}
		return ""
	}
}

// MinLength fails when a present string is shorter than n runes.
func MinLength(n int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("must be at least %d characters", n)
	}
	return func(value any, _ Subject) string {
		s, ok := asString(value)
		if !ok || s == "" {
			return ""
		}
		if len([]rune(s)) < n {
			return msg
		}
		return ""
	}
}

// Pattern fails when a present string does not match re.
func Pattern(re *regexp.Regexp, msg string) Rule {
	if msg == "" {
		msg = "invalid format"
	}
	return func(value any, _ Subject) string {
		s, ok := asString(value)
		if !ok || s == "" {
			return ""
		}
		if !re.MatchString(s) {
			return msg
		}
		return ""
	}
}

// HexColor fails when a present string is not a #rgb or #rrggbb color.
func HexColor(msg string) Rule {
	if msg == "" {
		msg = "must be a hex color like #1a2b3c"
	}
	return Pattern(hexColorPattern, msg)
}

// IntMin fails when a present value is not an integer of at least min.
func IntMin(min int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("must be an integer of at least %d", min)
	}
	return func(value any, _ Subject) string {
		if isEmpty(value) {
			return ""
		}
		n, ok := asInt(value)
		if !ok || n < int64(min) {
			return msg
		}
		return ""
	}
}

// Custom wraps an arbitrary predicate; it fails with msg when the predicate
// returns false. The predicate decides for itself how to treat empty values.
func Custom(pred func(value any, subject Subject) bool, msg string) Rule {
	if msg == "" {
		msg = "invalid value"
	}
	return func(value any, subject Subject) string {
		if !pred(value, subject) {
			return msg
		}
		return ""
	}
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func asString(value any) (string, bool) {
	s, ok := value.(string)
	return s, ok
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
		return 0, false
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
