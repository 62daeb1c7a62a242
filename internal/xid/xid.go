package xid

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns prefix-<unix millis>-<8 hex chars>. The millisecond component
// keeps ids ordered by creation like the browser build's `s-<Date.now()>`.
func New(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}
