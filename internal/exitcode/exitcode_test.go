package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: Success},
		{name: "plain", err: base, want: RuntimeFailure},
		{name: "wrapped code", err: Wrap(InvalidConfig, base), want: InvalidConfig},
		{name: "code behind fmt wrap", err: fmt.Errorf("run: %w", Wrap(LaunchFailure, base)), want: LaunchFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, Of(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	require.NoError(t, Wrap(InvalidConfig, nil))

	base := errors.New("boom")
	err := Wrap(InvalidUsage, base)
	require.ErrorIs(t, err, base)
	require.Equal(t, "boom", err.Error())
}
