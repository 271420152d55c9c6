package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cuemby/cloudio/pkg/deploy"
	"github.com/cuemby/cloudio/pkg/poll"
	"github.com/cuemby/cloudio/pkg/storage"
	"github.com/cuemby/cloudio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloudio.yml")
	doc := `
deployment:
  strategy:
    step: 10
    metric:
      name: response-time
      expression: avg < 200
vamp:
  blueprint:
    name: shop
    clusters:
      frontend:
        services:
          - breed:
              name: web-v1
              deployable: "{{ WEB_IMAGE }}"
  gateway:
    name: shop
    routes:
      shop/frontend/webport: {}
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("WEB_IMAGE", "registry/web:1")

	out, err := execute(t, "validate", "--file", path)
	require.NoError(t, err)

	assert.Contains(t, out, path+" is valid")
	assert.Contains(t, out, "step 10%")
	assert.Contains(t, out, "Metric: response-time avg < 200")
	assert.Contains(t, out, "[0] frontend (1 services)")
	assert.Contains(t, out, "[shop/frontend/webport]")
}

func TestValidateCommandRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cloudio.yml")
	require.NoError(t, os.WriteFile(path, []byte("deployment:\n  strategy:\n    step: 0\n"), 0o600))

	_, err := execute(t, "validate", "--file", path)

	require.ErrorIs(t, err, types.ErrConfiguration)
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewBoltStore(dir)
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveRecord(&types.MigrationRecord{
		ID: "1", Deployment: "shop", Service: "web-v1", Path: types.DeployPathCreate,
		Outcome: types.OutcomeCreated, StartedAt: start, FinishedAt: start.Add(40 * time.Second),
	}))
	require.NoError(t, store.SaveRecord(&types.MigrationRecord{
		ID: "2", Deployment: "shop", Service: "web-v2", Path: types.DeployPathUpdate,
		Outcome: types.OutcomeAborted, StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour + 2*time.Minute),
		Error: "aborted: metric gate",
	}))
	require.NoError(t, store.Close())

	t.Run("all", func(t *testing.T) {
		out, err := execute(t, "history", "--data-dir", dir, "--limit", "0")
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "OUTCOME")
		assert.Contains(t, lines[1], "web-v2")
		assert.Contains(t, lines[1], "aborted: metric gate")
		assert.Contains(t, lines[2], "web-v1")
		assert.Contains(t, lines[2], "40s")
	})

	t.Run("limit", func(t *testing.T) {
		out, err := execute(t, "history", "--data-dir", dir, "--limit", "1")
		require.NoError(t, err)

		assert.Contains(t, out, "web-v2")
		assert.NotContains(t, out, "web-v1")
	})

	t.Run("empty", func(t *testing.T) {
		out, err := execute(t, "history", "--data-dir", t.TempDir())
		require.NoError(t, err)
		assert.Contains(t, out, "No deploys recorded")
	})
}

func TestDeployCommandRequiresBreedAndDeployable(t *testing.T) {
	out, err := execute(t, "deploy", "shop", "web-v2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "please provide options for <deployable>, <breed>")
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--deployable")
}

func TestDeployCommandMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	_, err := execute(t, "deploy", "shop", "web-v2", "-b", "web", "-d", "registry/web:2", "-f", path, "--data-dir", t.TempDir())

	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "not found")
}

func TestDeployCommandArgs(t *testing.T) {
	_, err := execute(t, "deploy", "shop")
	assert.Error(t, err)
}

func TestPrintReport(t *testing.T) {
	opts := deploy.Options{Deployment: "shop", Service: "web-v2"}
	routes := func(mig *deploy.Migration) *deploy.Migration {
		mig.Gateway = "shop/frontend/webport"
		mig.SourceRoute = types.ParseRouteKey("shop/frontend/web-v1/webport")
		mig.TargetRoute = types.ParseRouteKey("shop/frontend/web-v2/webport")
		return mig
	}

	tests := []struct {
		name    string
		report  *deploy.Report
		want    []string
		notWant []string
	}{
		{
			name:   "created",
			report: &deploy.Report{Outcome: types.OutcomeCreated},
			want:   []string{"✓ shop web-v2: created"},
		},
		{
			name: "migrated",
			report: &deploy.Report{
				Outcome:   types.OutcomeMigrated,
				Migration: routes(&deploy.Migration{Removed: "web-v1", Poll: &poll.Result{Outcome: poll.Succeeded}}),
			},
			want:    []string{"✓ shop web-v2: migrated", "Removed: web-v1"},
			notWant: []string{"✗", "Rolled back"},
		},
		{
			name: "aborted",
			report: &deploy.Report{
				Outcome:   types.OutcomeAborted,
				Migration: routes(&deploy.Migration{Removed: "web-v2", Poll: &poll.Result{Outcome: poll.Aborted, Reason: "metric gate"}}),
			},
			want:    []string{"✗ shop web-v2: aborted", "Rolled back: web-v2 removed (aborted: metric gate)"},
			notWant: []string{"✓"},
		},
		{
			name: "timed out",
			report: &deploy.Report{
				Outcome:   types.OutcomeTimedOut,
				Migration: routes(&deploy.Migration{Removed: "web-v2", Poll: &poll.Result{Outcome: poll.TimedOut}}),
			},
			want:    []string{"✗ shop web-v2: timed-out", "(timed-out)"},
			notWant: []string{"✓"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printReport(&buf, opts, tt.report)

			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}
