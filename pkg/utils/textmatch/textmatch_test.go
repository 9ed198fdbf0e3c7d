package textmatch_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mnemo-lab/mnemosyne/pkg/utils/textmatch"
)

func TestFold(t *testing.T) {
	gt.Value(t, textmatch.Fold("Bütçe")).Equal("butce")
	gt.Value(t, textmatch.Fold("Şifre")).Equal("sifre")
	gt.Value(t, textmatch.Fold("PostgreSQL")).Equal("postgresql")
	gt.Value(t, textmatch.Fold("")).Equal("")
}

func TestContainsFold(t *testing.T) {
	gt.Bool(t, textmatch.ContainsFold("Proje bütçesi 500 TL", "butce")).True()
	gt.Bool(t, textmatch.ContainsFold("React removed", "REACT")).True()
	gt.Bool(t, textmatch.ContainsFold("React removed", "vue")).False()
}

func TestSimilarity(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		gt.Value(t, textmatch.Similarity("budget", "budget")).Equal(1.0)
	})

	t.Run("accent variants score 1", func(t *testing.T) {
		gt.Value(t, textmatch.Similarity("bütçe", "butce")).Equal(1.0)
	})

	t.Run("suffix variation scores high", func(t *testing.T) {
		s := textmatch.Similarity("bütçe", "bütçesi")
		gt.Number(t, s).Greater(0.3)
		gt.Number(t, s).Less(1.0)
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		gt.Number(t, textmatch.Similarity("react", "postgresql")).Less(0.1)
	})

	t.Run("empty string scores 0", func(t *testing.T) {
		gt.Value(t, textmatch.Similarity("", "budget")).Equal(0.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		gt.Value(t, textmatch.Similarity("redis", "redis cache")).
			Equal(textmatch.Similarity("redis cache", "redis"))
	})
}
