package testutil

import (
	"strings"

	"github.com/google/uuid"
)

// RandomEmail returns a unique address so tests can share one database.
func RandomEmail() string {
	return "user-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12] + "@example.com"
}
