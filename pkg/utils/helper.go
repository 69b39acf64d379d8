package utils

import (
	"strconv"

	"github.com/google/uuid"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// GenerateToken creates an opaque token for sessions, verification links
// and password resets.
func GenerateToken() string {
	return uuid.New().String()
}
