// Package prompt wraps promptui for the interactive paths of
// longshorectl: destructive-action confirmation and session picking.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user backed out of a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err means the user backed out rather than
// something going wrong. Commands treat aborts as a clean exit.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

// Confirm asks a yes/no question. Ctrl+C yields ErrAborted; an explicit
// "n" yields false with no error; empty input takes the default.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}

	answer, err := (&promptui.Prompt{
		Label:     fmt.Sprintf("%s [%s]", label, hint),
		IsConfirm: true,
	}).Run()

	switch {
	case err == nil:
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes", nil
	case errors.Is(err, promptui.ErrInterrupt):
		return false, ErrAborted
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	case answer == "":
		return defaultYes, nil
	default:
		return false, err
	}
}

// ConfirmWithForce is Confirm with a --yes bypass: when force is set the
// user is not asked at all.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

// SelectOption is one pickable item. Value is what the command receives;
// Label and Description are what the user sees.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// Select shows a scrollable picker and returns the chosen option's value.
// Ctrl+C yields ErrAborted.
func Select(label string, options []SelectOption) (string, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
	if len(options) > 0 && options[0].Description != "" {
		templates.Details = `
{{ "Description:" | faint }}	{{ .Description }}`
	}

	i, _, err := (&promptui.Select{
		Label:     label,
		Items:     options,
		Templates: templates,
		Size:      10,
	}).Run()
	if err != nil {
		if IsAborted(err) {
			return "", ErrAborted
		}
		return "", err
	}

	return options[i].Value, nil
}
