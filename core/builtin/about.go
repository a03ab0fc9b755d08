package builtin

import (
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/afero"
)

const aboutArt = `⠀⠀⠀⠀⠀⣀⣠⣤⣤⣤⣤⣄⣀⠀⠀⠀⠀⠀
⠀⠀⢀⣴⣿⣿⣿⣿⣿⣿⣿⣿⣿⣿⣦⡀⠀⠀
⠀⣴⣿⣿⣿⣿⣿⣿⣿⣿⣿⣿⠟⢿⣿⣷⡀⠀
⣸⣿⣿⣿⣿⣿⣿⣿⣿⣿⠟⠁⠀⣴⢿⣿⣧⠀
⣿⣿⣿⣿⣿⡿⠛⣩⠍⠀⠀⠀⠐⠉⢠⣿⣿⡇
⣿⡿⠛⠋⠉⠀⠀⠀⠀⠀⠀⠀⠀⢠⣿⣿⣿⣿
⢹⣿⣤⠄⠀⠀⠀⠀⠀⠀⠀⠀⢠⣿⣿⣿⣿⡏
⠀⠻⡏⠀⠀⠀⠀⠀⠀⠀⠀⠀⢿⣿⣿⣿⠟⠀
⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⢻⠟⠁⠀⠀
⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀⠀`

const (
	unknownValue = "Unknown"
	artGap       = 5
)

var (
	colorArt   = color.New(color.FgCyan, color.Bold)
	colorLabel = color.New(color.FgGreen, color.Bold)
)

type aboutField struct {
	Label string
	Value string
}

// about prints the banner art next to a read-only system summary. Every
// probe degrades to a placeholder instead of failing the command.
func (d *Dispatcher) about() {
	renderAbout(d.Stdout, collectInfo(d.Fs, d.Getenv))
}

func collectInfo(fs afero.Fs, getenv func(string) string) []aboutField {
	user := getenv("USER")
	if user == "" {
		user = unknownValue
	}

	host := getenv("HOSTNAME")
	if host == "" {
		host = readTrimmed(fs, "/etc/hostname")
	}

	return []aboutField{
		{"User", user},
		{"Host", host},
		{"OS", osPrettyName(fs)},
		{"Kernel", kernelRelease(fs)},
		{"Uptime", uptimeHours(fs)},
		{"RAM", totalRAM(fs)},
		{"CPU", cpuModel(fs)},
		{"Shell", loginShell(fs, getenv, user)},
	}
}

func readTrimmed(fs afero.Fs, name string) string {
	contents, err := afero.ReadFile(fs, name)
	if err != nil {
		return unknownValue
	}
	out := strings.TrimSpace(string(contents))
	if out == "" {
		return unknownValue
	}
	return out
}

// osPrettyName pulls PRETTY_NAME out of /etc/os-release.
func osPrettyName(fs afero.Fs) string {
	contents, err := afero.ReadFile(fs, "/etc/os-release")
	if err != nil {
		return unknownValue
	}
	for _, line := range strings.Split(string(contents), "\n") {
		if strings.HasPrefix(line, "PRETTY_NAME=") {
			name := strings.TrimPrefix(line, "PRETTY_NAME=")
			return strings.Trim(name, `"`)
		}
	}
	return unknownValue
}

// kernelRelease reads the release field of /proc/version.
func kernelRelease(fs afero.Fs) string {
	fields := strings.Fields(readTrimmed(fs, "/proc/version"))
	if len(fields) < 3 {
		return unknownValue
	}
	return fields[2]
}

func uptimeHours(fs afero.Fs) string {
	fields := strings.Fields(readTrimmed(fs, "/proc/uptime"))
	if len(fields) == 0 {
		return unknownValue
	}
	secs, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return unknownValue
	}
	return fmt.Sprintf("%.2f hours", secs/3600)
}

func totalRAM(fs afero.Fs) string {
	contents, err := afero.ReadFile(fs, "/proc/meminfo")
	if err != nil {
		return unknownValue
	}
	for _, line := range strings.Split(string(contents), "\n") {
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			break
		}
		return fmt.Sprintf("%.2f GB", float64(kb)/(1024*1024))
	}
	return unknownValue
}

func cpuModel(fs afero.Fs) string {
	contents, err := afero.ReadFile(fs, "/proc/cpuinfo")
	if err != nil {
		return unknownValue
	}
	for _, line := range strings.Split(string(contents), "\n") {
		if !strings.HasPrefix(line, "model name") {
			continue
		}
		if _, value, ok := strings.Cut(line, ":"); ok {
			return strings.TrimSpace(value)
		}
	}
	return unknownValue
}

// loginShell prefers $SHELL and falls back to the user's /etc/passwd
// entry.
func loginShell(fs afero.Fs, getenv func(string) string, user string) string {
	if sh := getenv("SHELL"); sh != "" {
		return path.Base(sh)
	}

	contents, err := afero.ReadFile(fs, "/etc/passwd")
	if err != nil {
		return unknownValue
	}
	for _, line := range strings.Split(string(contents), "\n") {
		entry := strings.Split(line, ":")
		if len(entry) < 7 || entry[0] != user {
			continue
		}
		return path.Base(entry[6])
	}
	return unknownValue
}

// renderAbout prints the art and info side by side, padding by terminal
// cells so the info column stays aligned past the wide art runes.
func renderAbout(w io.Writer, info []aboutField) {
	artLines := strings.Split(aboutArt, "\n")

	maxArtWidth := 0
	for _, line := range artLines {
		if cells := runewidth.StringWidth(line); cells > maxArtWidth {
			maxArtWidth = cells
		}
	}
	column := maxArtWidth + artGap

	for i, artLine := range artLines {
		colorArt.Fprint(w, artLine)
		if i < len(info) {
			fmt.Fprint(w, strings.Repeat(" ", column-runewidth.StringWidth(artLine)))
			writeField(w, info[i])
		}
		fmt.Fprintln(w)
	}

	for i := len(artLines); i < len(info); i++ {
		fmt.Fprint(w, strings.Repeat(" ", column))
		writeField(w, info[i])
		fmt.Fprintln(w)
	}
}

func writeField(w io.Writer, f aboutField) {
	colorLabel.Fprint(w, runewidth.FillRight(f.Label+":", 9))
	fmt.Fprint(w, f.Value)
}
