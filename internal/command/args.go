package command

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// stringArg returns args[key] as a trimmed string; missing and null give ""
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", failf(ErrInvalidArgument, "Argument '%s' must be a string, got %T", key, v)
	}
	return strings.TrimSpace(s), nil
}

// intArg returns args[key] as an int, or def when missing or null.
// JSON numbers decode as float64 and are truncated toward zero.
func intArg(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return floatArg(key, n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := n.Float64(); err == nil {
			return floatArg(key, f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, nil
		}
	}
	return 0, failf(ErrInvalidArgument, "Argument '%s' must be an integer, got %v", key, v)
}

// floatArg truncates f toward zero, rejecting values no int can hold
func floatArg(key string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, failf(ErrInvalidArgument, "Argument '%s' must be an integer, got %v", key, f)
	}
	if f >= math.MaxInt || f < math.MinInt {
		return 0, failf(ErrInvalidArgument, "Argument '%s' is out of range: %v", key, f)
	}
	return int(f), nil
}
