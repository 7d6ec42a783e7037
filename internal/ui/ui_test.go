package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/dropwise/internal/model"
)

func capture(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	out, errb := &bytes.Buffer{}, &bytes.Buffer{}
	oldOut, oldErr := Stdout, Stderr
	Stdout, Stderr = out, errb
	t.Cleanup(func() { Stdout, Stderr = oldOut, oldErr })
	return out, errb
}

func TestOKFailPlainWhenNotTTY(t *testing.T) {
	SetTheme("classic")
	out, errb := capture(t)
	OK("added")
	Fail("boom")
	assert.Equal(t, "✔ added\n", out.String())
	assert.Equal(t, "✖ boom\n", errb.String())
}

func TestForcedColor(t *testing.T) {
	SetTheme("classic")
	SetColorForcing(true, false)
	t.Cleanup(func() { SetColorForcing(false, false) })
	assert.Equal(t, fgCyan+"[new]"+reset, Badge(model.StatusNew))
	assert.Equal(t, "plain", C("", "plain"))
}

func TestPanelAlignsUnicode(t *testing.T) {
	SetTheme("mono")
	t.Cleanup(func() { SetTheme("classic"); SetColorForcing(false, false) })
	out, _ := capture(t)
	Panel([]string{"ab", "✔ x"})
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{"+-----+", "| ab  |", "| ✔ x |", "+-----+"}, lines)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "héll...", Truncate("héllo world", 7))
}
