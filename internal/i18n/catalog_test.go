package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attimuite/internal/domain"
)

func TestEmbeddedCatalogCoversEveryMessageKey(t *testing.T) {
	c := Default()
	for _, locale := range c.Locales() {
		for _, key := range domain.AllMessageKeys {
			assert.NotEqual(t, string(key), c.Lookup(string(key), locale), "%s/%s", locale, key)
		}
	}
}

func TestLookupByLanguage(t *testing.T) {
	c := Default()
	assert.Equal(t, "最初はグー！", c.Lookup(string(domain.MsgInitialRock), "ja"))
	assert.Equal(t, "You win!", c.Lookup(string(domain.MsgPlayerWins), "en-US"))
	assert.Equal(t, "勝負つかずもういちど！", c.Lookup(string(domain.MsgNoDecision), "ja-JP"))
}

func TestResolve(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"ja", "en"}, c.Locales())
	assert.Equal(t, "en", c.Resolve("en-GB"))
	assert.Equal(t, "ja", c.Resolve("fr"))
	assert.Equal(t, "ja", c.Resolve(""))
	assert.Equal(t, "ja", c.Resolve("not a tag!"))
}

func TestLookupFallsBackToBaseThenKey(t *testing.T) {
	c, err := LoadFromFS(fstest.MapFS{
		"locales/ja.yaml": {Data: []byte("locale: ja\nmessages:\n  tie: あいこ\n  only_ja: のみ\n")},
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  tie: Tie\n")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tie", c.Lookup("tie", "en"))
	assert.Equal(t, "のみ", c.Lookup("only_ja", "en"))
	assert.Equal(t, "missing_key", c.Lookup("missing_key", "en"))
}

func TestLoadFromFSValidation(t *testing.T) {
	_, err := LoadFromFS(fstest.MapFS{})
	assert.Error(t, err)

	_, err = LoadFromFS(fstest.MapFS{
		"locales/en.yaml": {Data: []byte("locale: en\nmessages:\n  tie: Tie\n")},
	})
	assert.ErrorContains(t, err, "base locale")

	_, err = LoadFromFS(fstest.MapFS{
		"locales/ja.yaml": {Data: []byte("messages:\n  tie: x\n")},
	})
	assert.ErrorContains(t, err, "locale is required")

	_, err = LoadFromFS(fstest.MapFS{
		"locales/ja.yaml": {Data: []byte("locale: ja\n")},
	})
	assert.ErrorContains(t, err, "messages map is required")
}
