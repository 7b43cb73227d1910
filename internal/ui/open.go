package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenURL opens url with the platform's default handler without waiting for
// it to exit.
func OpenURL(url string) error {
	name, args := openCommand(runtime.GOOS, url)
	if name == "" {
		return fmt.Errorf("opening URLs is not supported on %s", runtime.GOOS)
	}
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "", nil
	}
}
