package channels

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSplitMessage_Short(t *testing.T) {
	assert.Equal(t, []string{"hello"}, splitMessage("hello", 10))
}

func TestSplitMessage_PrefersNewlineThenSpace(t *testing.T) {
	chunks := splitMessage("first line\nsecond line", 15)
	assert.Equal(t, []string{"first line", "second line"}, chunks)

	chunks = splitMessage("alpha beta gamma", 12)
	assert.Equal(t, []string{"alpha beta", "gamma"}, chunks)
}

func TestSplitMessage_KeepsWhitespaceAfterBreak(t *testing.T) {
	chunks := splitMessage("first line\n  indented\n\tdone", 12)
	assert.Equal(t, []string{"first line", "  indented", "\tdone"}, chunks)

	chunks = splitMessage("alpha  beta", 6)
	assert.Equal(t, []string{"alpha", " beta"}, chunks)
}

func TestSplitMessage_HardCutKeepsRunes(t *testing.T) {
	content := strings.Repeat("é", 10) // 20 bytes, no break points
	chunks := splitMessage(content, 7)

	assert.Equal(t, content, strings.Join(chunks, ""))
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %q splits a rune", c)
		assert.LessOrEqual(t, len(c), 7)
	}
}

func TestSplitMessage_TelegramLimit(t *testing.T) {
	content := strings.Repeat("word ", 2000) // 10000 bytes
	chunks := splitMessage(content, telegramMaxLen)

	assert.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), telegramMaxLen)
	}
}

func TestMarkdownToTelegramHTML(t *testing.T) {
	cases := map[string]string{
		"**bold**":             "<b>bold</b>",
		"~~gone~~":             "<s>gone</s>",
		"a < b & c":            "a &lt; b &amp; c",
		"[site](https://x.io)": `<a href="https://x.io">site</a>`,
		"# Title":              "Title",
		"- item":               "• item",
		"use `x<y`":            "use <code>x&lt;y</code>",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, markdownToTelegramHTML(in), "input %q", in)
	}
}

func TestMarkdownToTelegramHTML_CodeBlock(t *testing.T) {
	got := markdownToTelegramHTML("```go\nif a < b {}\n```")
	assert.Equal(t, "<pre><code>if a &lt; b {}\n</code></pre>", got)
}
