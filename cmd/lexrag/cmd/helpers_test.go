package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// faqDir writes a small FAQ corpus and isolates user configuration.
func faqDir(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "horario.md"), "# Horario\n\nNuestro horario es de lunes a viernes de 9am a 6pm.\n")
	writeFile(t, filepath.Join(dir, "envios.txt"), "Hacemos envíos a todo el país por mensajería certificada.")
	writeFile(t, filepath.Join(dir, "pagos.html"),
		"<html><head><title>Pagos</title></head><body><p>Aceptamos tarjeta de crédito y transferencia bancaria.</p></body></html>")
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}
