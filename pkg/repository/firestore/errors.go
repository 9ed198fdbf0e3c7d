package firestore

import "github.com/mnemo-lab/mnemosyne/pkg/domain/interfaces"

// ErrNotFound aliases the shared repository sentinel
var ErrNotFound = interfaces.ErrNotFound
