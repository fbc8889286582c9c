package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), runtime.GOOS+"/"+runtime.GOARCH)
	require.True(t, strings.HasPrefix(UserAgent(), "game-launcher/"+Short()))
}

func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		args []string
		want string
	}{
		{args: []string{"version"}, want: Full() + "\n"},
		{args: []string{"version", "--short"}, want: Short() + "\n"},
	} {
		root := &cobra.Command{Use: "game-launcher"}
		AttachCobraVersionCommand(root)

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs(tt.args)

		require.NoError(t, root.Execute())
		require.Equal(t, tt.want, out.String())
	}
}
