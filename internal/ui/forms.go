package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

// CreateConfirmForm creates a single confirm prompt.
func CreateConfirmForm(title, description, affirmative, negative string, value *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative(negative).
				Value(value),
		),
	)
}

// Confirm asks a yes/no question and returns the answer.
func Confirm(title, description string) (bool, error) {
	var ok bool
	if err := CollectWithForm(CreateConfirmForm(title, description, "Yes", "No", &ok), "confirmation failed"); err != nil {
		return false, err
	}
	return ok, nil
}

// CollectWithForm runs a form and wraps errors with a consistent message
func CollectWithForm(form *huh.Form, errorMsg string) error {
	if err := form.Run(); err != nil {
		return fmt.Errorf("%s: %w", errorMsg, err)
	}
	return nil
}
