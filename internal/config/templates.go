package config

import (
	"fmt"
	"os"
)

func Template() string {
	return greetctlTemplate
}

// WriteTemplate writes a starter config to path.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(greetctlTemplate), 0o644)
}

const greetctlTemplate = `# socket is used only when GREETD_SOCK is unset.
# socket = "/run/greetd.sock"
default_session = "sway"
auto_start = true
connect_timeout = "5s"
connect_attempts = 3
exchange_timeout = "0s"
log_level = "info"

[[sessions]]
slug = "sway"
name = "Sway"
exec = ["sway"]
type = "wayland"
desktop_names = ["sway"]

[[sessions]]
slug = "plasma"
name = "Plasma (Wayland)"
exec = ["startplasma-wayland"]
type = "wayland"
desktop_names = ["KDE"]
`
