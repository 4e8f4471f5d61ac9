package fonts

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDirs returns the usual system and per-user font directories for the
// running OS. Directories that do not exist are still listed; Scan skips them.
func DefaultDirs() []string {
	home, _ := os.UserHomeDir()
	join := func(parts ...string) string {
		if home == "" {
			return ""
		}
		return filepath.Join(append([]string{home}, parts...)...)
	}

	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		return []string{
			"/System/Library/Fonts",
			"/Library/Fonts",
			join("Library", "Fonts"),
		}
	default:
		dirs := []string{
			"/usr/share/fonts",
			"/usr/local/share/fonts",
			join(".fonts"),
			join(".local", "share", "fonts"),
		}
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			dirs = append(dirs, filepath.Join(xdg, "fonts"))
		}
		return dirs
	}
}
