package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressModelFinalView(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{name: "success", want: []string{"✓", "Loading dashboard\n"}},
		{name: "failure", err: errors.New("boom"), want: []string{"✗", "Loading dashboard: boom\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := newProgressModel("Loading dashboard...", nil)
			assert.Contains(t, model.View(), "Loading dashboard...")

			next, cmd := model.Update(jobFinishedMsg{err: tt.err})
			require.NotNil(t, cmd)

			final := next.(progressModel)
			assert.True(t, final.finished)
			assert.Equal(t, tt.err, final.err)
			for _, want := range tt.want {
				assert.Contains(t, final.View(), want)
			}

			// A late tick must not restart the animation.
			_, cmd = final.Update(spinner.TickMsg{})
			assert.Nil(t, cmd)
		})
	}
}

func TestWithSpinnerQuietRunsJobDirectly(t *testing.T) {
	root := newRootCmd()
	root.SetContext(context.Background())

	want := errors.New("unreachable")
	calls := 0
	err := withSpinner(root, true, "Loading dashboard...", func(context.Context) error {
		calls++
		return want
	})

	assert.ErrorIs(t, err, want)
	assert.Equal(t, 1, calls)
}
