package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword reads a line from the terminal without echo
var readPassword = term.ReadPassword

// isTerminal reports whether fd is an interactive terminal
var isTerminal = term.IsTerminal

// promptPassword asks for a password on the terminal, or reads one line from
// stdin when it is not a terminal so the CLI can be scripted.
func promptPassword(in io.Reader, out io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && isTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(out, "Password: ")
		pass, err := readPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pass), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
