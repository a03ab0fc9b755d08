package builtin

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkdir struct {
	dir     string
	chdirs  []string
	failure error
}

func (f *fakeWorkdir) chdir(dir string) error {
	f.chdirs = append(f.chdirs, dir)
	if f.failure != nil {
		return f.failure
	}
	f.dir = dir
	return nil
}

func newTestDispatcher(wd *fakeWorkdir, env map[string]string) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	d := &Dispatcher{
		Fs:     afero.NewMemMapFs(),
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return env[k] },
		Chdir:  wd.chdir,
		Home:   func() (string, error) { return "/home/tester", nil },
	}
	return d, &stdout, &stderr
}

func TestDispatchUnreservedNames(t *testing.T) {
	d, _, _ := newTestDispatcher(&fakeWorkdir{}, nil)

	for _, line := range []string{"ls", "echo about", "cdx /tmp", ""} {
		handled, exit := d.Dispatch(line)
		assert.False(t, handled, "line %q must reach the pipeline", line)
		assert.False(t, exit)
	}
}

func TestDispatchExit(t *testing.T) {
	d, _, _ := newTestDispatcher(&fakeWorkdir{}, nil)

	for _, line := range []string{"exit", "exit;", "exit 0"} {
		handled, exit := d.Dispatch(line)
		assert.True(t, handled, line)
		assert.True(t, exit, line)
	}
}

func TestCdChangesDirectory(t *testing.T) {
	wd := &fakeWorkdir{}
	d, _, stderr := newTestDispatcher(wd, nil)

	handled, exit := d.Dispatch("cd /tmp")
	assert.True(t, handled)
	assert.False(t, exit)
	assert.Equal(t, []string{"/tmp"}, wd.chdirs)
	assert.Zero(t, stderr.Len())
}

func TestCdNoArgGoesHome(t *testing.T) {
	wd := &fakeWorkdir{}
	d, _, _ := newTestDispatcher(wd, nil)

	d.Dispatch("cd")
	assert.Equal(t, []string{"/home/tester"}, wd.chdirs)
}

func TestCdFailureSurfacedAndNonFatal(t *testing.T) {
	wd := &fakeWorkdir{failure: errors.New("no such file or directory")}
	d, _, stderr := newTestDispatcher(wd, nil)

	handled, exit := d.Dispatch("cd /nope")
	assert.True(t, handled)
	assert.False(t, exit, "a failed cd must not end the session")
	assert.Contains(t, stderr.String(), "no such file or directory")
}

func TestCdTooManyArguments(t *testing.T) {
	wd := &fakeWorkdir{}
	d, _, stderr := newTestDispatcher(wd, nil)

	d.Dispatch("cd a b")
	assert.Empty(t, wd.chdirs)
	assert.Contains(t, stderr.String(), "too many arguments")
}

func TestIsBuiltin(t *testing.T) {
	assert.True(t, IsBuiltin("cd"))
	assert.True(t, IsBuiltin("exit"))
	assert.True(t, IsBuiltin("about"))
	assert.False(t, IsBuiltin("ls"))
}

func aboutFixture(t *testing.T) afero.Fs {
	t.Helper()

	mem := afero.NewMemMapFs()
	files := map[string]string{
		"/etc/hostname":   "reefbox\n",
		"/etc/os-release": "NAME=\"Tidal\"\nPRETTY_NAME=\"Tidal GNU/Linux 12\"\n",
		"/proc/version":   "Linux version 6.1.0-18-amd64 (builder@x) (gcc 12)\n",
		"/proc/uptime":    "7200.00 14000.00\n",
		"/proc/meminfo":   "MemTotal:       8388608 kB\nMemFree: 1 kB\n",
		"/proc/cpuinfo":   "processor\t: 0\nmodel name\t: Fictional CPU 9000\n",
		"/etc/passwd":     "root:x:0:0:root:/root:/bin/bash\ntester:x:1000:1000::/home/tester:/usr/bin/fish\n",
	}
	for name, contents := range files {
		require.NoError(t, afero.WriteFile(mem, name, []byte(contents), 0644))
	}
	return mem
}

func TestAboutCollectsSystemInfo(t *testing.T) {
	d, stdout, _ := newTestDispatcher(&fakeWorkdir{}, map[string]string{"USER": "tester"})
	d.Fs = aboutFixture(t)

	handled, exit := d.Dispatch("about")
	assert.True(t, handled)
	assert.False(t, exit)

	out := stdout.String()
	assert.Contains(t, out, "tester")
	assert.Contains(t, out, "reefbox")
	assert.Contains(t, out, "Tidal GNU/Linux 12")
	assert.Contains(t, out, "6.1.0-18-amd64")
	assert.Contains(t, out, "2.00 hours")
	assert.Contains(t, out, "8.00 GB")
	assert.Contains(t, out, "Fictional CPU 9000")
	assert.Contains(t, out, "fish")
}

func TestAboutDegradesToPlaceholders(t *testing.T) {
	// Empty filesystem and environment: every field degrades, nothing
	// errors.
	d, stdout, stderr := newTestDispatcher(&fakeWorkdir{}, nil)

	handled, _ := d.Dispatch("about")
	assert.True(t, handled)
	assert.Contains(t, stdout.String(), unknownValue)
	assert.Zero(t, stderr.Len())
}

func TestCollectInfoFieldOrder(t *testing.T) {
	info := collectInfo(aboutFixture(t), func(k string) string {
		return map[string]string{"USER": "tester", "SHELL": "/bin/zsh"}[k]
	})

	var labels []string
	for _, f := range info {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"User", "Host", "OS", "Kernel", "Uptime", "RAM", "CPU", "Shell"}, labels)

	// $SHELL wins over /etc/passwd.
	assert.Equal(t, "zsh", info[7].Value)
}
