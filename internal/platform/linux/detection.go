//go:build linux

// Package linux holds the Linux back ends for input injection and idle queries.
package linux

import (
	"bufio"
	"io"
	"os"
	"slices"
	"strings"
)

// DisplayServer is the graphical session protocol.
type DisplayServer string

const (
	DisplayServerWayland DisplayServer = "wayland"
	DisplayServerX11     DisplayServer = "x11"
	DisplayServerUnknown DisplayServer = "unknown"
)

// Desktops that change which tools work. Mutter exposes an idle monitor on
// GNOME; everywhere else idle comes from xprintidle.
const (
	DesktopGNOME   = "gnome"
	DesktopKDE     = "kde"
	DesktopXFCE    = "xfce"
	DesktopUnknown = "unknown"
)

// Capabilities records which injection and idle-query tools this session can use.
type Capabilities struct {
	XdotoolAvailable    bool
	XprintidleAvailable bool
	UinputAvailable     bool
	YdotoolAvailable    bool
	YdotooldRunning     bool
	DisplayServer       DisplayServer
	DesktopEnvironment  string
}

// DetectCapabilities checks the session for usable tools.
func DetectCapabilities() Capabilities {
	display := DetectDisplayServer()
	uinput, _ := CheckUinputPermissions()
	ydotool := hasCommand("ydotool")
	return Capabilities{
		XdotoolAvailable:    hasCommand("xdotool"),
		XprintidleAvailable: display == DisplayServerX11 && hasCommand("xprintidle"),
		UinputAvailable:     uinput,
		YdotoolAvailable:    ydotool,
		YdotooldRunning:     ydotool && ProcessRunning("ydotoold"),
		DisplayServer:       display,
		DesktopEnvironment:  DetectDesktopEnvironment(),
	}
}

// desktopMarkers maps substrings of the XDG session variables to a desktop.
// Ubuntu's session is a GNOME Shell derivative with the same idle monitor.
var desktopMarkers = map[string][]string{
	DesktopGNOME: {"gnome", "ubuntu"},
	DesktopKDE:   {"kde", "plasma"},
	DesktopXFCE:  {"xfce"},
}

// DetectDesktopEnvironment reports the desktop from XDG_CURRENT_DESKTOP and DESKTOP_SESSION.
func DetectDesktopEnvironment() string {
	session := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP") + ":" + os.Getenv("DESKTOP_SESSION"))
	for _, desktop := range []string{DesktopKDE, DesktopXFCE, DesktopGNOME} {
		if slices.ContainsFunc(desktopMarkers[desktop], func(m string) bool {
			return strings.Contains(session, m)
		}) {
			return desktop
		}
	}
	return DesktopUnknown
}

// DetectDisplayServer reports Wayland or X11. A Wayland socket wins over
// DISPLAY because XWayland sets both.
func DetectDisplayServer() DisplayServer {
	session := DisplayServer(strings.ToLower(os.Getenv("XDG_SESSION_TYPE")))
	switch {
	case os.Getenv("WAYLAND_DISPLAY") != "", session == DisplayServerWayland:
		return DisplayServerWayland
	case os.Getenv("DISPLAY") != "", session == DisplayServerX11:
		return DisplayServerX11
	default:
		return DisplayServerUnknown
	}
}

// DistroInfo names the distribution and the package manager used in install hints.
type DistroInfo struct {
	Name       string
	PkgManager string
}

// pkgManagers lists each package manager with the os-release IDs that use it.
var pkgManagers = []struct {
	manager string
	ids     []string
}{
	{"apt", []string{"debian", "ubuntu", "pop", "linuxmint"}},
	{"dnf", []string{"fedora", "rhel", "centos", "rocky", "almalinux"}},
	{"pacman", []string{"arch", "manjaro", "endeavouros"}},
	{"zypper", []string{"opensuse", "opensuse-leap", "opensuse-tumbleweed", "suse"}},
	{"apk", []string{"alpine"}},
}

// DetectDistribution reads /etc/os-release, falling back to whichever
// package manager is on PATH.
func DetectDistribution() DistroInfo {
	f, err := os.Open("/etc/os-release")
	if err != nil {
		return DistroInfo{Name: "unknown", PkgManager: pathPackageManager()}
	}
	defer f.Close()
	return distroFromOSRelease(f)
}

func distroFromOSRelease(r io.Reader) DistroInfo {
	fields := parseOSRelease(r)
	info := DistroInfo{Name: strings.ToLower(fields["ID"])}
	if info.Name == "" {
		info.Name = "unknown"
	}

	// ID_LIKE is a space separated list of parent distributions.
	candidates := append([]string{info.Name}, strings.Fields(strings.ToLower(fields["ID_LIKE"]))...)
	for _, id := range candidates {
		for _, pm := range pkgManagers {
			if slices.Contains(pm.ids, id) {
				info.PkgManager = pm.manager
				if pm.manager == "dnf" && !hasCommand("dnf") && hasCommand("yum") {
					info.PkgManager = "yum"
				}
				return info
			}
		}
	}
	info.PkgManager = pathPackageManager()
	return info
}

// parseOSRelease returns the KEY=value pairs of an os-release file with
// surrounding quotes removed.
func parseOSRelease(r io.Reader) map[string]string {
	fields := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"'`)
	}
	return fields
}

func pathPackageManager() string {
	for _, m := range []string{"apt", "dnf", "yum", "pacman", "zypper", "apk"} {
		if hasCommand(m) {
			return m
		}
	}
	return "unknown"
}
