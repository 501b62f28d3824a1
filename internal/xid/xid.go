package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a time-ordered identifier such as "ord-0190f3c2-...".
func New(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}
