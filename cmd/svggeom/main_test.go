package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIcon = `<svg width="100%" height="100%">
	<clipPath id="clip"><rect width="50" height="50"/></clipPath>
	<rect id="r" x="10" y="10" width="50%" height="20" clip-path="url(#clip)"/>
	<g id="empty"/>
</svg>`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

// run executes the command line, isolated from the working directory config.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	wd, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBoundsCommand(t *testing.T) {
	file := writeTemp(t, "icon.svg", testIcon)

	out, err := run(t, "bounds", file, "--width", "200", "--height", "100")
	require.NoError(t, err)
	assert.Equal(t, "clip\tclipPath\tempty\nr\trect\t10 10 100 20\nempty\tg\tempty\n", out)

	out, err = run(t, "bounds", file, "r")
	require.NoError(t, err)
	assert.Equal(t, "r\trect\t10 10 150 20\n", out, "default viewport is 300x150")

	_, err = run(t, "bounds", file, "missing")
	assert.Error(t, err)
}

func TestConfigSources(t *testing.T) {
	file := writeTemp(t, "icon.svg", testIcon)

	t.Setenv("SVGGEOM_VIEWPORT_WIDTH", "400")
	out, err := run(t, "bounds", file, "r")
	require.NoError(t, err)
	assert.Equal(t, "r\trect\t10 10 200 20\n", out)

	cfg := writeTemp(t, "config.yaml", "viewport:\n  width: 60\nlogger:\n  level: error\n")
	out, err = run(t, "--config", cfg, "bounds", file, "r")
	require.NoError(t, err)
	assert.Equal(t, "r\trect\t10 10 200 20\n", out, "env overrides the config file")

	out, err = run(t, "--config", cfg, "--width", "80", "bounds", file, "r")
	require.NoError(t, err)
	assert.Equal(t, "r\trect\t10 10 40 20\n", out, "flags override everything")

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "bounds", file)
	assert.Error(t, err)

	_, err = run(t, "--error-mode", "loud", "bounds", file)
	assert.Error(t, err)
}

func TestStrictMode(t *testing.T) {
	file := writeTemp(t, "icon.svg", `<svg><rect width="1furlong" height="1"/></svg>`)
	_, err := run(t, "--error-mode", "strict", "bounds", file)
	assert.Error(t, err)
	_, err = run(t, "--error-mode", "ignore", "bounds", file)
	assert.NoError(t, err)
}

func TestRegionCommand(t *testing.T) {
	file := writeTemp(t, "icon.svg", testIcon)

	out, err := run(t, "region", file, "r", "--width", "200")
	require.NoError(t, err)
	assert.Equal(t, "bounds\t0 0 50 50\npath 0\t0 0 50 50\n", out)

	out, err = run(t, "region", file, "empty")
	require.NoError(t, err)
	assert.Equal(t, "unconstrained\n", out)
}

func TestRasterCommand(t *testing.T) {
	file := writeTemp(t, "icon.svg", testIcon)
	target := filepath.Join(t.TempDir(), "out.png")

	_, err := run(t, "raster", file, target, "--width", "200", "--height", "100")
	require.NoError(t, err)

	f, err := os.Open(target)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	_, _, _, a := img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = img.At(55, 20).RGBA()
	assert.Zero(t, a, "clipped")
}

func TestPDFCommand(t *testing.T) {
	file := writeTemp(t, "icon.svg", testIcon)
	target := filepath.Join(t.TempDir(), "out.pdf")

	_, err := run(t, "pdf", file, target)
	require.NoError(t, err)
	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")))

	// an invalid document leaves no output behind
	bad := writeTemp(t, "bad.svg", "<svg><rect")
	badTarget := filepath.Join(t.TempDir(), "bad.pdf")
	_, err = run(t, "pdf", bad, badTarget)
	assert.Error(t, err)
	assert.NoFileExists(t, badTarget)

	_, err = run(t, "raster", bad, filepath.Join(t.TempDir(), "bad.png"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}
