package contentpolicy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPolicy(t *testing.T, yaml string, locales ...string) *WordListPolicy {
	t.Helper()
	rs, err := ParseRuleset([]byte(yaml))
	require.NoError(t, err)
	p, err := NewWordListPolicy(rs, locales...)
	require.NoError(t, err)
	return p
}

const testRuleset = `
languages:
  en: [darn, scoundrel, "b.s"]
  es: [tonto]
`

func TestClassify_WordBoundaries(t *testing.T) {
	p := newTestPolicy(t, testRuleset)

	cases := []struct {
		name    string
		text    string
		blocked bool
	}{
		{"exact word", "well darn it", true},
		{"case insensitive", "DARN!", true},
		{"inside longer word", "darnation is not a word here", false},
		{"prefix of word", "undarn", false},
		{"punctuation around", "(darn)", true},
		{"other locale", "no seas tonto", true},
		{"clean text", "see you at the reunion", false},
		{"word with symbol is literal", "that was b.s honestly", true},
		{"symbol word not wildcarded", "that was bxs honestly", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.blocked, p.Classify(tc.text).Blocked)
			require.Equal(t, tc.blocked, p.IsProhibited(tc.text))
		})
	}
}

func TestClassify_Leetspeak(t *testing.T) {
	p := newTestPolicy(t, testRuleset)

	// scoundrel has nine letters, so leet variants are generated
	require.True(t, p.Classify("what a sc0undr3l").Blocked)
	require.True(t, p.Classify("SC0UNDREL").Blocked)
	require.True(t, p.Classify("$coundre1").Blocked)

	// darn is shorter than six letters: no variants
	require.False(t, p.Classify("d4rn").Blocked)
}

func TestListMatches_DistinctAsWritten(t *testing.T) {
	p := newTestPolicy(t, testRuleset)

	matches := p.ListMatches("Darn, darn and sc0undrel")
	require.Equal(t, []string{"Darn", "sc0undrel"}, matches)

	require.Empty(t, p.ListMatches("nothing to see"))
}

func TestRedact_EqualLengthMask(t *testing.T) {
	p := newTestPolicy(t, testRuleset)

	require.Equal(t, "well **** it, ****", p.Redact("well darn it, darn"))
	require.Equal(t, "clean", p.Redact("clean"))
	// adjacent matches separated by a single space are both masked
	require.Equal(t, "**** ****", p.Redact("darn darn"))
}

func TestNewWordListPolicy_Locales(t *testing.T) {
	p := newTestPolicy(t, testRuleset, "es")

	require.False(t, p.Classify("darn").Blocked)
	require.True(t, p.Classify("tonto").Blocked)
	require.Equal(t, 1, p.Size())

	rs, err := ParseRuleset([]byte(testRuleset))
	require.NoError(t, err)
	_, err = NewWordListPolicy(rs, "de")
	require.Error(t, err)
}

func TestDefaultRuleset(t *testing.T) {
	rs := DefaultRuleset()
	require.Equal(t, []string{"en", "es", "fr"}, rs.Locales())

	p, err := NewWordListPolicy(rs)
	require.NoError(t, err)
	require.True(t, p.Classify("this is bullsh1t").Blocked)
	require.True(t, p.Classify("quel ENCULÉ").Blocked)
	require.False(t, p.Classify("Looking forward to the class of 2010 reunion").Blocked)
}

func TestLoadRuleset(t *testing.T) {
	rs, fromFile, err := LoadRuleset(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.False(t, fromFile)
	require.NotEmpty(t, rs.Languages)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRuleset), 0o600))
	rs, fromFile, err = LoadRuleset(path)
	require.NoError(t, err)
	require.True(t, fromFile)
	require.Equal(t, []string{"en", "es"}, rs.Locales())

	require.NoError(t, os.WriteFile(path, []byte("languages: {}\n"), 0o600))
	_, _, err = LoadRuleset(path)
	require.Error(t, err)
}
