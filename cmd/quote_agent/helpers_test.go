package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)

// bathroomRequestJSON carries a draft without the electrical installation
const bathroomRequestJSON = `{
  "description": "Renovera badrum 6 kvm",
  "job_type": "bathroom_renovation",
  "area": 6,
  "draft": {
    "work_items": [
      {"name": "Rivning", "hours": 9, "hourly_rate": 650},
      {"name": "Tätskikt", "hours": 6, "hourly_rate": 650},
      {"name": "Kakelsättning vägg", "hours": 7.5, "hourly_rate": 650},
      {"name": "Klinkerläggning golv", "hours": 6, "hourly_rate": 650},
      {"name": "VVS-installation", "hours": 16, "hourly_rate": 650}
    ]
  }
}`

const bareRequestJSON = `{
  "description": "Renovera badrum 6 kvm",
  "job_type": "bathroom_renovation",
  "area": 6
}`

// modelDraft is raw model output: fenced, with one stringly typed number
const modelDraft = "```json\n" + `{
  "work_items": [
    {"name": "Rivning", "hours": 9, "hourly_rate": 650},
    {"name": "Tätskikt", "hours": 6, "hourly_rate": 650},
    {"name": "Kakelsättning vägg", "hours": 7.5, "hourly_rate": 650},
    {"name": "Klinkerläggning golv", "hours": 6, "hourly_rate": 650},
    {"name": "VVS-installation", "hours": "16", "hourly_rate": 650}
  ],
  "materials": []
}` + "\n```"

// writeFile writes content to name inside a fresh temp dir and returns the path
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearEnv blanks the variables config.FromEnv reads
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "DATABASE_URL", "LOG_LEVEL", "QUOTE_ADDR"} {
		t.Setenv(key, "")
	}
}

// getBinaryPath returns the path to the quote_agent binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "quote_agent"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/quote_agent ./cmd/quote_agent'", binaryPath)
	}

	return binaryPath
}
