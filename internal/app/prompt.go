// Where: internal/app/prompt.go
// What: Interactive input helpers using the huh library.
package app

import "github.com/charmbracelet/huh"

// Prompter asks the user for a value when a command argument is omitted.
type Prompter interface {
	Input(title string, suggestions []string) (string, error)
}

// HuhPrompter implements Prompter using the huh TUI library.
type HuhPrompter struct{}

func (p HuhPrompter) Input(title string, suggestions []string) (string, error) {
	var input string
	err := huh.NewInput().
		Title(title).
		Suggestions(suggestions).
		Value(&input).
		Run()
	if err != nil {
		return "", err
	}
	return input, nil
}
