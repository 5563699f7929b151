package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"scriptsync/internal/model"
	"scriptsync/internal/ui"
)

// TerminalDecider answers the engine's decisions by prompting on the
// terminal. It is the interactive counterpart of sync.Policy.
type TerminalDecider struct {
	reader *bufio.Reader
}

// NewTerminalDecider creates a prompter reading from stdin.
func NewTerminalDecider() *TerminalDecider {
	return &TerminalDecider{
		reader: bufio.NewReader(os.Stdin),
	}
}

// KeepLocalName prompts for a name mismatch decision. Default is to keep
// the local name.
func (d *TerminalDecider) KeepLocalName(local model.LocalScript, remote model.RemoteScript) (bool, error) {
	fmt.Println(ui.StatusWarning("Script name mismatch!"))
	fmt.Printf("    Local:  %s\n", ui.Success(local.Name))
	fmt.Printf("    Remote: %s\n", ui.Success(remote.Name))
	return d.confirm("    Keep local name (remote will be renamed)?", true)
}

// ConfirmOverwrite prompts before replacing an existing file during pull.
func (d *TerminalDecider) ConfirmOverwrite(kind, path string, defaultYes bool) (bool, error) {
	fmt.Println(ui.StatusWarning(fmt.Sprintf("%s file already exists: %s", kind, path)))
	return d.confirm("    Overwrite?", defaultYes)
}

// ConfirmDelete prompts before a remote delete. Default is decline.
func (d *TerminalDecider) ConfirmDelete(remote model.RemoteScript) (bool, error) {
	prompt := fmt.Sprintf("Delete remote script %s (id %d)?", ui.Bold(remote.Name), remote.ID)
	return d.confirm(prompt, false)
}

// confirm asks a yes/no question until it gets an answer. An empty line
// takes the default.
func (d *TerminalDecider) confirm(prompt string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	for {
		fmt.Printf("%s %s ", prompt, ui.Dim(suffix))

		line, err := d.reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		default:
			fmt.Println(ui.Dim("    Please answer y or n."))
		}
	}
}

// promptPassword reads a password without echoing it.
func promptPassword(username string) (string, error) {
	fmt.Printf("Password for %s: ", ui.Bold(username))
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}
