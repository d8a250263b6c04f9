package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		defaultYes bool
		want       bool
		wantErr    error
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full no", input: "No\n", defaultYes: true, want: false},
		{name: "empty takes default yes", input: "\n", defaultYes: true, want: true},
		{name: "empty takes default no", input: "\n", want: false},
		{name: "retries after invalid answer", input: "maybe\nyes\n", want: true},
		{name: "end of input", input: "", wantErr: ErrInputTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Delete?", tt.defaultYes)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete?")
		})
	}
}

func TestPrompter_ConfirmInvalidAnswerMessage(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("what\nn\n"), &out)

	got, err := p.Confirm(context.Background(), "Reset history?", false)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Contains(t, out.String(), "Please answer y or n.")
	assert.Equal(t, 2, strings.Count(out.String(), "Reset history?"))
}
