package errhandler_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/hance08/paycore/internal/errhandler"
	"github.com/hance08/paycore/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestMessage(t *testing.T) {
	assert.Equal(t, "Insufficient balance", errhandler.Message(fmt.Errorf("transfer: %w", service.ErrInsufficientFunds)))
	assert.Equal(t, "Failed to open config", errhandler.Message(errors.New("failed to open config")))
}

func TestIsInterrupt(t *testing.T) {
	assert.True(t, errhandler.IsInterrupt(terminal.InterruptErr))
	assert.True(t, errhandler.IsInterrupt(fmt.Errorf("input cancelled: %w", terminal.InterruptErr)))
	assert.False(t, errhandler.IsInterrupt(errors.New("boom")))
}
