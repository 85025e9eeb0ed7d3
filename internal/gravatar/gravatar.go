package gravatar

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// URL derives the Gravatar image URL for an email address. Used as the
// default avatar reference for freshly registered accounts.
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", hash)
}
