// Package browser hands URLs to the desktop's default web handler.
package browser

import (
	"fmt"

	"github.com/skratchdot/open-golang/open"
)

// Opener opens a URL for the user.
type Opener interface {
	Open(url string) error
}

// System opens URLs with the operating system's default handler.
type System struct{}

func (System) Open(url string) error {
	if err := open.Run(url); err != nil {
		return fmt.Errorf("browser: opening %s: %w", url, err)
	}
	return nil
}

// Func adapts a function to Opener.
type Func func(url string) error

func (f Func) Open(url string) error { return f(url) }
