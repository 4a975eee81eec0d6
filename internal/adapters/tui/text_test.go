package tui

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "markup is kept literally", input: `<b>bold</b> & "quoted"`, want: `<b>bold</b> & "quoted"`},
		{name: "color sequences are removed", input: "\x1b[31mred\x1b[0m", want: "red"},
		{name: "screen clear is removed", input: "before\x1b[2Jafter", want: "beforeafter"},
		{name: "hyperlinks keep their text", input: "\x1b]8;;https://example.com\x07link\x1b]8;;\x07", want: "link"},
		{name: "control characters become spaces", input: "line\nbreak\ttab\x07", want: "line break tab "},
		{name: "unicode passes through", input: "Dr. Elena Vasquez ↔ Sofia Lindqvist", want: "Dr. Elena Vasquez ↔ Sofia Lindqvist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitize(tt.input))
		})
	}
}

func TestClipTruncatesToWidth(t *testing.T) {
	t.Parallel()

	clipped := clip("Marcus Chen, Head of Custody Partnerships", 12)
	assert.LessOrEqual(t, ansi.StringWidth(clipped), 12)
	assert.Contains(t, clipped, "…")
	assert.Equal(t, "short", clip("short", 12))
}

func TestRenderBar(t *testing.T) {
	t.Parallel()

	s := newStyles()
	assert.Equal(t, "[=====-----]", ansi.Strip(renderBar(0.5, 10, s)))
	assert.Equal(t, "[----------]", ansi.Strip(renderBar(-1, 10, s)))
	assert.Equal(t, "[==========]", ansi.Strip(renderBar(3, 10, s)))
	assert.Empty(t, renderBar(0.5, 0, s))
}
