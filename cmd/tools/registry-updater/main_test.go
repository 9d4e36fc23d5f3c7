package main

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"job-portal-workers/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	now := time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC)
	var out bytes.Buffer

	require.NoError(t, run("add", []string{
		"-path", path,
		"-id", "toggle-saved-job",
		"-displayName", "Toggle Saved Job",
		"-category", "jobs",
		"-errorCodes", "JOB_NOT_FOUND, VALIDATION_FAILED",
	}, &out, now))
	assert.Contains(t, out.String(), "Added activity: toggle-saved-job")

	err := run("add", []string{"-path", path, "-id", "toggle-saved-job", "-displayName", "x", "-category", "jobs"}, &out, now)
	assert.ErrorIs(t, err, registry.ErrDuplicateID)

	require.NoError(t, run("update", []string{"-path", path, "-id", "toggle-saved-job", "-field", "retries", "-value", "5"}, &out, now))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, err := reg.Find("toggle-saved-job")
	require.NoError(t, err)
	assert.Equal(t, "toggle-saved-job", a.TaskType)
	assert.Equal(t, 5, a.Retries)
	assert.Equal(t, []string{"JOB_NOT_FOUND", "VALIDATION_FAILED"}, a.ErrorCodes)
	assert.Equal(t, "2025-05-05T10:00:00Z", reg.LastUpdated)

	assert.Error(t, run("update", []string{"-path", path, "-id", "toggle-saved-job", "-field", "timeout", "-value", "soon"}, &out, now))
	assert.Error(t, run("update", []string{"-path", path, "-id", "toggle-saved-job", "-field", "owner", "-value", "x"}, &out, now))
	assert.ErrorIs(t, run("update", []string{"-path", path, "-id", "nope", "-field", "status", "-value", "verified"}, &out, now), registry.ErrActivityNotFound)

	out.Reset()
	require.NoError(t, run("validate", []string{"-path", path}, &out, now))
	assert.Contains(t, out.String(), "Found 1 activities")

	out.Reset()
	require.NoError(t, run("list", []string{"-path", path}, &out, now))
	assert.Contains(t, out.String(), "toggle-saved-job")
}

func TestRequiredFlags(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "r.json")
	assert.Error(t, run("add", []string{"-path", path, "-id", "x"}, &out, time.Now()))
	assert.Error(t, run("update", []string{"-path", path, "-id", "x"}, &out, time.Now()))
	assert.Error(t, run("validate", []string{"-path", path}, &out, time.Now()))
	assert.Error(t, run("bogus", nil, &out, time.Now()))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
}
