package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "normal input passes through",
			in:   "What is the total revenue for Alex Park?",
			want: "What is the total revenue for Alex Park?",
		},
		{
			name: "surrounding whitespace trimmed",
			in:   "  hello  ",
			want: "hello",
		},
		{
			name: "control characters removed",
			in:   "hello\x00world\x07test",
			want: "helloworldtest",
		},
		{
			name: "newlines and tabs preserved",
			in:   "line 1\nline\t2",
			want: "line 1\nline\t2",
		},
		{
			name: "empty input is a valid pass-through",
			in:   "",
			want: "",
		},
		{
			name: "whitespace-only collapses to empty",
			in:   "   \n  ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Question(tt.in))
		})
	}
}

func TestQuestionTruncates(t *testing.T) {
	long := strings.Repeat("a", 1000)
	got := Question(long)
	assert.Len(t, got, MaxQuestionLength)
}

func TestQuestionTruncatesByRunes(t *testing.T) {
	long := strings.Repeat("é", 600)
	got := Question(long)
	assert.Equal(t, MaxQuestionLength, len([]rune(got)))
}
