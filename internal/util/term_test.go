package util

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestInitColor_Disabled(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	color.NoColor = false
	InitColor(true)
	assert.True(t, color.NoColor)
}

func TestIsTTY_UnderTest(t *testing.T) {
	// go test captures stdout, so it is never a terminal.
	assert.False(t, IsTTY())
}

func TestLogColor_Disabled(t *testing.T) {
	assert.False(t, LogColor(true))
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	assert.False(t, IsTerminal(f))
}
