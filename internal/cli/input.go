package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword and isTerminal are test seams for the terminal prompt.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptyPassword = errors.New("password must not be empty")

// getPassword returns the password from --password, from a no-echo prompt
// when stdin is a terminal, or from the first line of stdin otherwise.
// The caller wipes the returned slice.
func getPassword(cmd *cobra.Command, flagValue string) ([]byte, error) {
	if flagValue != "" {
		return []byte(flagValue), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		if _, err := fmt.Fprint(cmd.ErrOrStderr(), "Enter password: "); err != nil {
			return nil, err
		}
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		if len(pw) == 0 {
			return nil, errEmptyPassword
		}
		return pw, nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		if errors.Is(err, io.EOF) {
			return nil, errEmptyPassword
		}
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errEmptyPassword
	}
	return []byte(line), nil
}
