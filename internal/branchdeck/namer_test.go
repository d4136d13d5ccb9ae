package branchdeck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugNamerName(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		max     int
		want    string
	}{
		{
			name:    "simple",
			subject: "Fix the login bug",
			want:    "fix-the-login-bug",
		},
		{
			name:    "punctuation collapses to single hyphen",
			subject: "Fix: the login/bug!!",
			want:    "fix-the-login-bug",
		},
		{
			name:    "leading and trailing punctuation trimmed",
			subject: "  --wip--  ",
			want:    "wip",
		},
		{
			name:    "empty subject falls back to unnamed",
			subject: "   ...   ",
			want:    "unnamed",
		},
		{
			name:    "custom max length",
			subject: "a very long commit subject that should be truncated",
			max:     10,
			want:    "a-very-lon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := SlugNamer{MaxLength: tt.max}
			got := n.Name(tt.subject)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), max(tt.max, DefaultSlugMaxLength))
		})
	}
}

func TestSlugNamerDefaultMaxLength(t *testing.T) {
	n := SlugNamer{}
	got := n.Name(strings.Repeat("word ", 30))
	assert.LessOrEqual(t, len(got), DefaultSlugMaxLength)
}
