package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-orca/internal/budget"
	"github.com/noah-isme/backend-orca/internal/money"
)

// field returns the first present key from the map, nil when none match.
// Legacy payloads mix camelCase and snake_case freely.
func field(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}

func isList(v any) bool {
	_, ok := v.([]any)
	return ok
}

// amount coerces a numeric-looking value into an Amount. Absent values are
// silently zero; present but unparsable or negative values are zeroed with a
// warning so callers can surface the degradation.
func (d *decoder) amount(v any, path string) money.Amount {
	switch t := v.(type) {
	case nil:
		return money.Zero()
	case float64:
		return d.nonNegative(money.FromFloat(t), path)
	case int:
		return d.nonNegative(money.FromInt(int64(t)), path)
	case int64:
		return d.nonNegative(money.FromInt(t), path)
	case json.Number:
		if a, ok := money.Parse(t.String()); ok {
			return d.nonNegative(a, path)
		}
	case string:
		if a, ok := money.Parse(t); ok {
			return d.nonNegative(a, path)
		}
	}
	d.warnf(path, "unparsable amount %v, using 0", v)
	return money.Zero()
}

func (d *decoder) nonNegative(a money.Amount, path string) money.Amount {
	if a.IsNegative() {
		d.warnf(path, "negative amount %s, using 0", a)
		return money.Zero()
	}
	return a
}

// percent coerces like amount and additionally clamps into [0,100].
func (d *decoder) percent(v any, path string) money.Amount {
	p := d.amount(v, path)
	if p.GreaterThan(money.FromInt(100)) {
		d.warnf(path, "percentage %s above 100, clamping", p)
		return money.FromInt(100)
	}
	return p
}

// stringOr renders the value as a string, falling back to def for anything
// that is not meaningfully textual.
func stringOr(v any, def string) string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return def
}

// boolValue reads a loosely-typed boolean; anything unrecognized is false.
func boolValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return false
}

// boolOr reads a loosely-typed boolean with a default for absent values.
func boolOr(v any, def bool) bool {
	if v == nil {
		return def
	}
	return boolValue(v)
}

func offerKind(v any) budget.OfferKind {
	switch stringOr(v, "") {
	case string(budget.KindFilm):
		return budget.KindFilm
	case string(budget.KindAudio):
		return budget.KindAudio
	default:
		return budget.KindGeneric
	}
}
