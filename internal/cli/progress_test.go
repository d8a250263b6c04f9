package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/platewise/internal/service"
)

func TestProgressBar_Update(t *testing.T) {
	var out bytes.Buffer
	var reporter service.ProgressReporter = NewProgressBar(&out)

	reporter.Update(50, "Analyzing image 2 of 2...")
	assert.Contains(t, out.String(), "Analyzing image 2 of 2...")

	reporter.Update(150, "Analysis complete!")
	assert.Contains(t, out.String(), "Analysis complete!")
}
