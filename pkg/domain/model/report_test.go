package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/model"
	"github.com/mnemo-lab/mnemosyne/pkg/domain/types"
)

func TestFingerprint(t *testing.T) {
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	memories := []*model.Memory{
		{ID: types.MemoryID("a"), CreatedAt: base},
		{ID: types.MemoryID("b"), CreatedAt: base.Add(time.Hour)},
	}

	t.Run("stable for the same set", func(t *testing.T) {
		gt.String(t, model.Fingerprint(memories)).Equal(model.Fingerprint(memories))
	})

	t.Run("independent of text content", func(t *testing.T) {
		// Memories are immutable after creation, so membership alone
		// determines staleness.
		withText := []*model.Memory{
			{ID: types.MemoryID("a"), Text: "anything", CreatedAt: base},
			{ID: types.MemoryID("b"), Text: "else", CreatedAt: base.Add(time.Hour)},
		}
		gt.String(t, model.Fingerprint(withText)).Equal(model.Fingerprint(memories))
	})

	t.Run("changes when a memory is added", func(t *testing.T) {
		grown := append([]*model.Memory{}, memories...)
		grown = append(grown, &model.Memory{ID: types.MemoryID("c"), CreatedAt: base.Add(2 * time.Hour)})
		gt.String(t, model.Fingerprint(grown)).NotEqual(model.Fingerprint(memories))
	})

	t.Run("changes when a memory is removed", func(t *testing.T) {
		gt.String(t, model.Fingerprint(memories[:1])).NotEqual(model.Fingerprint(memories))
	})

	t.Run("order sensitive", func(t *testing.T) {
		reversed := []*model.Memory{memories[1], memories[0]}
		gt.String(t, model.Fingerprint(reversed)).NotEqual(model.Fingerprint(memories))
	})

	t.Run("empty set has a fingerprint", func(t *testing.T) {
		gt.String(t, model.Fingerprint(nil)).Equal(model.Fingerprint([]*model.Memory{}))
	})
}
