package wrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractControlCode(t *testing.T) {
	code, rest := ExtractControlCode("<CENTER>hello world")
	assert.Equal(t, "<CENTER>", code)
	assert.Equal(t, "hello world", rest)

	code, rest = ExtractControlCode("foo <right>bar <left>baz")
	assert.Equal(t, "<right>", code)
	assert.Equal(t, "foo bar <left>baz", rest)

	code, rest = ExtractControlCode("plain <middle> text")
	assert.Empty(t, code)
	assert.Equal(t, "plain <middle> text", rest)
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, "center", Alignment("<Center>"))
	assert.Equal(t, "right", Alignment("<RIGHT>"))
	assert.Equal(t, "left", Alignment("<left>"))
	assert.Equal(t, "left", Alignment(""))
}

func TestWrapAlignedPrefixesFirstLineOnly(t *testing.T) {
	o := NewOracle(monospace)
	got := WrapAligned("<center>hi there you", 100, o)
	assert.Equal(t, []string{"<center>hi", "there", "you"}, got)
}

func TestWrapAlignedPassesCodeOnlyLine(t *testing.T) {
	o := NewOracle(monospace)
	assert.Equal(t, []string{"<left>"}, WrapAligned("<left>", 100, o))
	assert.Equal(t, []string{"<left>   "}, WrapAligned("<left>   ", 100, o))
}

func TestWrapAlignedWithoutCode(t *testing.T) {
	o := NewOracle(monospace)
	assert.Equal(t, []string{"hi", "there"}, WrapAligned("hi there", 100, o))
}
