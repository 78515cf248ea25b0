package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errPassphraseConfirmMismatch = errors.New("helix: passphrases do not match")

// promptPassphrase reads a passphrase from stdin without echoing it, when
// stdin is a terminal. When confirm is true (first-time capsule creation)
// the operator is asked to type it twice and the two must match.
func promptPassphrase(stdin *os.File, stderr io.Writer, confirm bool) (string, error) {
	if !term.IsTerminal(int(stdin.Fd())) {
		return readLine(stdin)
	}

	fmt.Fprint(stderr, "passphrase: ")
	first, err := readPassword(stdin)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("helix: read passphrase: %w", err)
	}

	if !confirm {
		return first, nil
	}

	fmt.Fprint(stderr, "confirm passphrase: ")
	second, err := readPassword(stdin)
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("helix: read passphrase confirmation: %w", err)
	}

	if first != second {
		return "", errPassphraseConfirmMismatch
	}
	return first, nil
}

func readPassword(stdin *os.File) (string, error) {
	b, err := term.ReadPassword(int(stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readLine(stdin *os.File) (string, error) {
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}
