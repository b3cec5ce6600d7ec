package mention

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no mentions here", nil},
		{"single", "thanks @Jane for organising", []string{"jane"}},
		{"start of text", "@bob see below", []string{"bob"}},
		{"dedup case-insensitive", "@Ann and @ann again", []string{"ann"}},
		{"trailing punctuation", "ping @carl.", []string{"carl"}},
		{"email is not a mention", "write to jane@example.com", nil},
		{"parenthesised", "(@dana) joined", []string{"dana"}},
		{"unicode names", "merci @Zoé", []string{"zoé"}},
		{"bare at sign", "meet @ noon", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Extract(tc.text))
		})
	}
}

func TestExtract_Capped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < MaxPerText+5; i++ {
		fmt.Fprintf(&b, "@user%d ", i)
	}

	require.Len(t, Extract(b.String()), MaxPerText)
}
