package hasher

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns the xxhash of data. Scans record it so a later
// rewrite can tell whether the file changed in between.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Format renders a fingerprint as fixed width hex for reports.
func Format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
