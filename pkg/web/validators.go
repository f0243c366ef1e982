package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// Gte returns a ParamValidator accepting values greater than or equal to min.
func Gte(min int64) ParamValidator {
	return func(v int64) bool { return v >= min }
}

// Gt returns a ParamValidator accepting values greater than min.
func Gt(min int64) ParamValidator {
	return func(v int64) bool { return v > min }
}

// Between returns a ParamValidator accepting values within [min, max].
func Between(min, max int64) ParamValidator {
	return func(v int64) bool { return v >= min && v <= max }
}

// ParseQueryInt reads an int32 query parameter. A missing parameter yields def.
// A malformed or rejected value writes a 400 response and returns false.
func ParseQueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int32, validate ParamValidator) (int32, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !validate(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int32(intValue), true
}
