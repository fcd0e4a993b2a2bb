package cli

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPassword(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		stdin   string
		want    string
		wantErr error
	}{
		{name: "flag wins", flag: "from-flag", stdin: "from-stdin\n", want: "from-flag"},
		{name: "first stdin line", stdin: "line one\nline two\n", want: "line one"},
		{name: "windows newline", stdin: "pw\r\n", want: "pw"},
		{name: "no trailing newline", stdin: "pw", want: "pw"},
		{name: "spaces are kept", stdin: " pw \n", want: " pw "},
		{name: "empty stdin", stdin: "", wantErr: errEmptyPassword},
		{name: "blank line", stdin: "\n", wantErr: errEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.stdin))

			got, err := getPassword(cmd, tt.flag)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
