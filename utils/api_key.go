package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateAPIKey returns a new service API key: the lrk_ prefix followed by
// the uppercase UUID without dashes.
func GenerateAPIKey() string {
	key := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "lrk_" + key
}
