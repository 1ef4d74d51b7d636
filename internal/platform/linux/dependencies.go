//go:build linux

package linux

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DependencyInfo contains information about a missing dependency and how to install it.
type DependencyInfo struct {
	Name        string
	WhyNeeded   string
	InstallCmd  string
	Optional    bool
	Alternative string
}

var packageNames = map[string]string{
	"ydotool":    "ydotool",
	"xdotool":    "xdotool",
	"xprintidle": "xprintidle",
}

// GenerateInstallCommand generates a distro-specific installation command for the given tool.
func GenerateInstallCommand(tool string, distro DistroInfo) (cmd string, note string) {
	pkg, ok := packageNames[strings.ToLower(tool)]
	if !ok {
		return "", fmt.Sprintf("no package known for %q", tool)
	}

	switch distro.PkgManager {
	case "apt":
		cmd = "sudo apt install " + pkg
	case "dnf", "yum":
		cmd = fmt.Sprintf("sudo %s install %s", distro.PkgManager, pkg)
	case "pacman":
		cmd = "sudo pacman -S " + pkg
	case "zypper":
		cmd = "sudo zypper install " + pkg
	case "apk":
		cmd = "sudo apk add " + pkg
	default:
		cmd = fmt.Sprintf("install %s with your package manager", pkg)
	}
	if pkg == "ydotool" {
		note = "ydotool needs its daemon: systemctl --user enable --now ydotoold"
	}
	return cmd, note
}

// CheckMissingDependencies lists the tools that would make jiggling or zen
// mode work better in this session.
func CheckMissingDependencies(caps Capabilities, distro DistroInfo) []DependencyInfo {
	var missing []DependencyInfo

	canInject := caps.UinputAvailable || caps.YdotooldRunning ||
		(caps.XdotoolAvailable && caps.DisplayServer == DisplayServerX11)

	if !caps.YdotoolAvailable && !canInject {
		cmd, note := GenerateInstallCommand("ydotool", distro)
		missing = append(missing, DependencyInfo{
			Name:        "ydotool",
			WhyNeeded:   "moves the pointer on Wayland and X11",
			InstallCmd:  cmd,
			Alternative: joinNonEmpty(note, "or grant uinput access: sudo usermod -aG input $USER"),
		})
	} else if caps.YdotoolAvailable && !caps.YdotooldRunning && !caps.UinputAvailable {
		missing = append(missing, DependencyInfo{
			Name:       "ydotoold",
			WhyNeeded:  "ydotool is installed but its daemon is not running",
			InstallCmd: "systemctl --user enable --now ydotoold",
		})
	}

	if caps.DisplayServer == DisplayServerX11 && !caps.XdotoolAvailable {
		cmd, _ := GenerateInstallCommand("xdotool", distro)
		missing = append(missing, DependencyInfo{
			Name:       "xdotool",
			WhyNeeded:  "moves the pointer on X11 and detects fullscreen windows for zen mode",
			InstallCmd: cmd,
			Optional:   canInject,
		})
	}

	if caps.DesktopEnvironment != DesktopGNOME && caps.DisplayServer == DisplayServerX11 && !caps.XprintidleAvailable {
		cmd, _ := GenerateInstallCommand("xprintidle", distro)
		missing = append(missing, DependencyInfo{
			Name:        "xprintidle",
			WhyNeeded:   "reports idle time for zen mode outside GNOME",
			InstallCmd:  cmd,
			Optional:    true,
			Alternative: "disable zen mode and jiggle continuously",
		})
	}

	return missing
}

// FormatDependencyMessages renders missing dependencies for the terminal.
func FormatDependencyMessages(missing []DependencyInfo) string {
	if len(missing) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Missing dependencies:\n")
	for i, dep := range missing {
		kind := "required"
		if dep.Optional {
			kind = "optional"
		}
		fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, dep.Name, kind, dep.WhyNeeded)
		fmt.Fprintf(&b, "   install: %s\n", dep.InstallCmd)
		if dep.Alternative != "" {
			fmt.Fprintf(&b, "   %s\n", dep.Alternative)
		}
	}
	return b.String()
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "; ")
}

// getInputGroupGID looks up the "input" group GID by parsing /etc/group.
func getInputGroupGID() int {
	file, err := os.Open("/etc/group")
	if err != nil {
		return -1
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.Split(line, ":")
		if len(parts) >= 3 && parts[0] == "input" {
			if gid, err := strconv.Atoi(parts[2]); err == nil {
				return gid
			}
		}
	}
	return -1
}

// CheckUinputPermissions reports whether /dev/uinput can be opened for writing,
// with a fix-it message when it cannot.
func CheckUinputPermissions() (hasAccess bool, errorMessage string) {
	if _, err := os.Stat(uinputDevicePath); os.IsNotExist(err) {
		return false, "uinput device not found; load the module with: sudo modprobe uinput"
	}

	f, err := os.OpenFile(uinputDevicePath, os.O_WRONLY, 0)
	if err == nil {
		f.Close()
		return true, ""
	}

	if gid := getInputGroupGID(); gid != -1 && !inGroup(gid) {
		return false, "uinput permission denied; add yourself to the input group:\n  sudo usermod -aG input $USER\nthen log out and back in"
	}
	return false, fmt.Sprintf("uinput permission denied: %v\ncreate a udev rule:\n  echo 'KERNEL==\"uinput\", MODE=\"0660\", GROUP=\"input\"' | sudo tee /etc/udev/rules.d/99-uinput.rules", err)
}

func inGroup(gid int) bool {
	groups, err := os.Getgroups()
	if err != nil {
		return false
	}
	for _, g := range groups {
		if g == gid {
			return true
		}
	}
	return false
}
