package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Desarso/fitcoach"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("API key rejected and stdin is not a terminal; set GEMINI_API_KEY")

// promptKey reads a replacement API key from the terminal without echoing it.
func promptKey(in *os.File, out io.Writer) fitcoach.PromptFunc {
	return func(ctx context.Context) (string, error) {
		fd := int(in.Fd())
		if !term.IsTerminal(fd) {
			return "", errNotTerminal
		}
		fmt.Fprint(out, "Gemini API key: ")
		key, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read API key: %w", err)
		}
		return strings.TrimSpace(string(key)), nil
	}
}
