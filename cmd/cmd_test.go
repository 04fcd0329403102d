package cmd

import (
	"testing"

	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestOutputFileFor(t *testing.T) {
	assert.Equal(t, "", outputFileFor("", schema.Daily))
	assert.Equal(t, "report.weekly.md", outputFileFor("report.md", schema.Weekly))
	assert.Equal(t, "out/report.monthly", outputFileFor("out/report", schema.Monthly))
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "/tmp/custom.db", sqlitePath("/tmp/custom.db", "/home/default.db"))
	assert.Equal(t, "/home/default.db", sqlitePath("", "/home/default.db"))
}

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"report", "schedule", "snapshots", "cache", "metrics", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	sub := map[string]bool{}
	for _, c := range snapshotsCmd.Commands() {
		sub[c.Name()] = true
	}
	for _, want := range []string{"list", "status", "export", "clear", "migrate"} {
		assert.True(t, sub[want], "missing snapshots subcommand %s", want)
	}
}
