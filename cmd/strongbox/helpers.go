// Shared helpers for strongbox subcommands.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/mesh-intelligence/strongbox/internal/security"
	"github.com/mesh-intelligence/strongbox/internal/store"
)

// openStore builds the document store over the resolved data directory.
func openStore(logger *log.Logger) *store.Store {
	return store.New(cfg.DataDir,
		store.WithLogger(logger),
		store.WithPasswordParams(security.Params{
			Time:      cfg.PasswordCost.Time,
			MemoryKiB: cfg.PasswordCost.MemoryKiB,
			Threads:   cfg.PasswordCost.Threads,
		}),
	)
}

// stdinReader is shared so piped input spanning several prompts is not lost
// to a discarded buffer.
var stdinReader = bufio.NewReader(os.Stdin)

// promptLine prints label to stderr and reads one line from stdin.
func promptLine(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := stdinReader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", label, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptSecret reads a secret without echo when stdin is a terminal, or a
// plain line when it is piped. The caller wipes the result.
func promptSecret(label string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := promptLine(label)
		return []byte(line), err
	}
	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", label, err)
	}
	return secret, nil
}

// promptNewSecret asks twice and fails when the entries differ.
func promptNewSecret(label string) ([]byte, error) {
	first, err := promptSecret(label)
	if err != nil {
		return nil, err
	}
	second, err := promptSecret("Repeat " + label)
	if err != nil {
		security.Wipe(first)
		return nil, err
	}
	defer security.Wipe(second)
	if !bytes.Equal(first, second) {
		security.Wipe(first)
		return nil, errors.New("entries do not match")
	}
	return first, nil
}
