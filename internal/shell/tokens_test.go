package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTokensStages(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Tokens
	}{
		{
			name:  "plain command",
			input: "echo hello",
			want:  Tokens{Tokens: []string{"echo", "hello"}, HasPipe: false, PipePos: 0},
		},
		{
			name:  "pipeline",
			input: "cat /etc/passwd | grep alice",
			want: Tokens{
				Tokens:  []string{"cat", "/etc/passwd", "grep", "alice"},
				HasPipe: true,
				PipePos: 2,
			},
		},
		{
			name:  "redirect token is not a pipe",
			input: "echo hi > /tmp/x",
			want:  Tokens{Tokens: []string{"echo", "hi", ">", "/tmp/x"}, HasPipe: false, PipePos: 0},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Parse(c.input)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", c.input, diff)
			}
		})
	}
}

func TestTokensStagesSplitsOnPipe(t *testing.T) {
	toks := Parse("cat /etc/passwd | grep alice")
	left, right := toks.Stages()

	wantLeft := []string{"cat", "/etc/passwd"}
	wantRight := []string{"grep", "alice"}
	if diff := cmp.Diff(wantLeft, left); diff != "" {
		t.Fatalf("left stage mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantRight, right); diff != "" {
		t.Fatalf("right stage mismatch (-want +got):\n%s", diff)
	}
}
