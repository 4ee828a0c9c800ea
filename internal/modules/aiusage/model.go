// README: Monthly allowance of AI trip narratives per user.
package aiusage

import (
	"errors"
	"time"
)

// ErrInsufficientTokens is returned when a user has no narratives left for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of narratives granted per month.
const DefaultTokens = 20

func monthOf(t time.Time) string {
	return t.UTC().Format("2006-01")
}
