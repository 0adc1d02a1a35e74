package errhandler

import (
	"errors"
	"os"
	"strings"
	"unicode"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/huh"
	"github.com/hance08/paycore/internal/service"
	"github.com/pterm/pterm"
)

// IsInterrupt reports whether err means the user aborted a prompt.
func IsInterrupt(err error) bool {
	return errors.Is(err, terminal.InterruptErr) ||
		errors.Is(err, huh.ErrUserAborted) ||
		strings.Contains(err.Error(), "interrupt")
}

func HandleError(err error) {
	if IsInterrupt(err) {
		pterm.Warning.Println("Operation Cancelled")
		os.Exit(0)
	}

	pterm.Error.Println(Message(err))
}

// Message renders err for the terminal. Domain errors use their stable
// user message; anything else is shown as is.
func Message(err error) string {
	if kind := service.Kind(err); kind != service.KindInternal {
		return service.UserMessage(err)
	}
	return capitalize(err.Error())
}

func capitalize(s string) string {
	if len(s) == 0 {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
