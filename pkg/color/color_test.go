package color

import (
	"os"
	"testing"

	fc "github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestForName_Stable(t *testing.T) {
	a := ForName("budi")
	b := ForName("budi")
	assert.True(t, a.Equals(b))
}

func TestPrefix_NoColor(t *testing.T) {
	prev := fc.NoColor
	fc.NoColor = true
	t.Cleanup(func() { fc.NoColor = prev })

	assert.Equal(t, "[siti]", Prefix("siti"))
	assert.False(t, Enabled())
}

func TestPrefix_Colored(t *testing.T) {
	if os.Getenv("NO_COLOR") != "" {
		t.Skip("NO_COLOR is set")
	}
	prev := fc.NoColor
	fc.NoColor = false
	t.Cleanup(func() { fc.NoColor = prev })

	p := Prefix("siti")
	assert.Contains(t, p, "[siti]")
	assert.NotEqual(t, "[siti]", p)
}
