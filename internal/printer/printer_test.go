package printer

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestPrinter(t *testing.T) (*Printer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestStatusLinesGoToErrorOutput(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	p.Success("registered %s", "SampleBot")
	p.Step("storing conversation")
	p.Warning("strict mode")

	assert.Empty(t, out.String())
	assert.Equal(t, "✓ registered SampleBot\n→ storing conversation\n⚠️  strict mode\n", errOut.String())
}

func TestError(t *testing.T) {
	p, _, errOut := newTestPrinter(t)

	err := p.Error("Failed to load config", "file not found", "Pass --config", "Create chatreg.yaml")

	assert.EqualError(t, err, "Failed to load config")
	assert.Contains(t, errOut.String(), "Failed to load config\n\nfile not found\n")
	assert.Contains(t, errOut.String(), "Either:\n  1. Pass --config\n  2. Create chatreg.yaml\n")
}

func TestErrorSingleSuggestion(t *testing.T) {
	p, _, errOut := newTestPrinter(t)

	p.Error("Bad output format", "", "Use yaml or json")

	assert.Equal(t, "Bad output format\n\nUse yaml or json\n", errOut.String())
}

func TestData(t *testing.T) {
	p, out, errOut := newTestPrinter(t)

	p.Data([]byte("chatbots: []\n"))

	assert.Equal(t, "chatbots: []\n", out.String())
	assert.Empty(t, errOut.String())
}
