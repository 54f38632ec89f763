// Package browser opens news links in the system browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/pders01/newsdash/internal/validation"
)

// Opener starts an external program for a URL.
type Opener struct {
	// Command overrides the platform default when non-empty
	Command string
	start   func(name string, args ...string) error
	lookup  func(string) (string, error)
}

// New returns an opener. An empty command selects the platform default.
func New(command string) *Opener {
	return &Opener{Command: command, start: startDetached, lookup: exec.LookPath}
}

// Open validates rawURL as a public http(s) link and hands it to the
// browser. It does not wait for the browser to exit.
func (o *Opener) Open(rawURL string) error {
	link, err := validation.NewLinkValidator().ValidateAndNormalize(rawURL)
	if err != nil {
		return fmt.Errorf("refusing to open link: %w", err)
	}

	name, args := o.command()
	if _, err := o.lookup(name); err != nil {
		return fmt.Errorf("no application found to open URL: %s not in PATH", name)
	}
	if err := o.start(name, append(args, link)...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}

func (o *Opener) command() (string, []string) {
	if o.Command != "" {
		return o.Command, nil
	}
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
