package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

// Report is a cached generated document for one project's memory set.
// Reports are append-only: a stale fingerprint is superseded by a new row,
// never updated in place.
type Report struct {
	ID          types.ReportID
	ProjectID   types.ProjectID
	Content     string
	Fingerprint string
	CreatedAt   time.Time
}

// Fingerprint computes the content fingerprint of a memory set: a hash over
// the ordered (id, created_at) pairs of every memory. It changes exactly
// when the set's membership changes, which is the cache invalidation rule
// since memories are immutable after creation.
func Fingerprint(memories []*Memory) string {
	var sb strings.Builder
	for _, m := range memories {
		fmt.Fprintf(&sb, "%s-%d", m.ID, m.CreatedAt.UnixNano())
	}
	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}
