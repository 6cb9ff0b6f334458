// Package clipboard writes copied text to the local system clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is installed.
var ErrUnavailable = errors.New("system clipboard unavailable")

// System implements ports.Clipboard with the OS clipboard.
type System struct {
	write func(string) error
}

// NewSystem returns the OS clipboard.
func NewSystem() *System {
	return &System{write: clipboard.WriteAll}
}

// Available reports whether the OS has a usable clipboard.
func Available() bool {
	return !clipboard.Unsupported
}

// WriteText copies text.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !Available() {
		return ErrUnavailable
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}
