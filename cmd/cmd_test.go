package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budget/config"
	"budget/middleware"
	"budget/report"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database:\n  driver: memory\nevents:\n  sink: none\njwt:\n  secret: cli-test-secret\n  expire_hours: 1\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer func() { config.GlobalConfig = nil }()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":8080", listenAddr("8080"))
	assert.Equal(t, ":8080", listenAddr(":8080"))
	assert.Equal(t, "127.0.0.1:8080", listenAddr("127.0.0.1:8080"))
	assert.Equal(t, "", listenAddr(""))
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "token", "--config", path, "--workspace", "3", "--actor", "alice")
	require.NoError(t, err)

	middleware.InitJWT(&config.Config{JWT: config.JWTConfig{Secret: "cli-test-secret"}})
	claims, err := middleware.ParseToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.WorkspaceID)
	assert.Equal(t, "alice", claims.Actor)
}

func TestForecastCommand_Print(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "forecast", "--config", path, "--workspace", "1", "--year", "2024", "--xlsx", "")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 14)
	assert.Contains(t, lines[0], "预测")
	assert.Contains(t, lines[1], "期初")
}

func TestForecastCommand_Xlsx(t *testing.T) {
	path := writeConfig(t)
	target := filepath.Join(t.TempDir(), "forecast.xlsx")
	out, err := run(t, "forecast", "--config", path, "--workspace", "1", "--year", "2024", "--xlsx", target)
	require.NoError(t, err)
	assert.Contains(t, out, target)

	f, err := excelize.OpenFile(target)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), report.ForecastSheet)
}

func TestMigrateCommand_RejectsMemory(t *testing.T) {
	path := writeConfig(t)
	_, err := run(t, "migrate", "--config", path)
	assert.Error(t, err)
}
