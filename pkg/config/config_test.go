package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cuemby/cloudio/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultFile, cfg.File)
	assert.Equal(t, 30*time.Second, cfg.Deployment.Timeout)
	assert.Equal(t, "canary", cfg.Deployment.Strategy.Name)
	assert.Equal(t, 25, cfg.Deployment.Strategy.Step)
	assert.Equal(t, 15*time.Second, cfg.Deployment.Strategy.Period)
	assert.Equal(t, 60*time.Second, cfg.Deployment.Strategy.Timeout)
	assert.False(t, cfg.Deployment.Strategy.Metric.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestParseMergesDefaults(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "empty document",
			doc:  "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default().Deployment, cfg.Deployment)
				assert.Nil(t, cfg.Vamp.Blueprint)
				assert.Nil(t, cfg.Vamp.Gateway)
			},
		},
		{
			name: "nested key keeps siblings",
			doc: `
deployment:
  strategy:
    step: 10
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 10, cfg.Deployment.Strategy.Step)
				assert.Equal(t, "canary", cfg.Deployment.Strategy.Name)
				assert.Equal(t, 15*time.Second, cfg.Deployment.Strategy.Period)
				assert.Equal(t, 60*time.Second, cfg.Deployment.Strategy.Timeout)
				assert.Equal(t, 30*time.Second, cfg.Deployment.Timeout)
			},
		},
		{
			name: "durations in seconds",
			doc: `
deployment:
  timeout: 120
  strategy:
    period: 5
    timeout: 600
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 2*time.Minute, cfg.Deployment.Timeout)
				assert.Equal(t, 5*time.Second, cfg.Deployment.Strategy.Period)
				assert.Equal(t, 10*time.Minute, cfg.Deployment.Strategy.Timeout)
			},
		},
		{
			name: "metric",
			doc: `
deployment:
  strategy:
    metric:
      name: response-time
      expression: avg < 200
`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Deployment.Strategy.Metric.Enabled())
				assert.Equal(t, "avg < 200", cfg.Deployment.Strategy.Metric.Expression)
			},
		},
		{
			name: "platform templates",
			doc: `
vamp:
  blueprint:
    name: shop
    clusters:
      frontend:
        services:
          - breed:
              name: web-v1
  gateway:
    name: shop-gateway
    port: 9050/http
    routes:
      shop/frontend/webport:
        weight: 100%
`,
			check: func(t *testing.T, cfg *Config) {
				require.NotNil(t, cfg.Vamp.Blueprint)
				require.Len(t, cfg.Vamp.Blueprint.Clusters, 1)
				assert.Equal(t, "frontend", cfg.Vamp.Blueprint.Clusters[0].Name)

				require.NotNil(t, cfg.Vamp.Gateway)
				assert.Equal(t, "9050/http", cfg.Vamp.Gateway.Extra["port"])
				assert.Equal(t, []string{"shop/frontend/webport"}, cfg.Vamp.Gateway.RouteKeys())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc), nil)
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestParseRendersTemplate(t *testing.T) {
	doc := `
vamp:
  blueprint:
    name: shop
    clusters:
      - name: frontend
        services:
          - breed:
              name: web
              deployable: "{{ IMAGE }}:{{TAG}}"
          - breed:
              name: sidecar
              deployable: "{{ MISSING }}sidecar"
`
	cfg, err := Parse([]byte(doc), map[string]string{"IMAGE": "registry/web", "TAG": "1.2.3"})
	require.NoError(t, err)

	services := cfg.Vamp.Blueprint.Clusters[0].Services
	assert.Equal(t, "registry/web:1.2.3", services[0].Breed.Deployable)
	assert.Equal(t, "sidecar", services[1].Breed.Deployable)
}

func TestRender(t *testing.T) {
	env := map[string]string{"NAME": "shop"}

	assert.Equal(t, "deployment: shop", Render("deployment: {{NAME}}", env))
	assert.Equal(t, "deployment: shop", Render("deployment: {{ NAME }}", env))
	assert.Equal(t, "deployment: ", Render("deployment: {{ OTHER }}", env))
	assert.Equal(t, "no tags", Render("no tags", env))
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{name: "malformed YAML", doc: "deployment: [", wantMsg: "failed to parse YAML"},
		{name: "step too large", doc: "deployment:\n  strategy:\n    step: 101\n", wantMsg: "step must be between 1 and 100"},
		{name: "step zero", doc: "deployment:\n  strategy:\n    step: 0\n", wantMsg: "step must be between 1 and 100"},
		{name: "negative timeout", doc: "deployment:\n  timeout: -1\n", wantMsg: "deployment.timeout must be positive"},
		{name: "zero period", doc: "deployment:\n  strategy:\n    period: 0\n", wantMsg: "period must be positive"},
		{name: "empty strategy name", doc: "deployment:\n  strategy:\n    name: \"\"\n", wantMsg: "name is required"},
		{name: "half metric", doc: "deployment:\n  strategy:\n    metric:\n      name: rt\n", wantMsg: "needs both name and expression"},
		{name: "gateway without routes", doc: "vamp:\n  gateway:\n    name: g\n", wantMsg: "routes must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), nil)
			require.ErrorIs(t, err, types.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.yml")
	require.NoError(t, os.WriteFile(path, []byte("deployment:\n  timeout: {{ TIMEOUT }}\n"), 0o600))

	cfg, err := Load(path, map[string]string{"TIMEOUT": "45"})
	require.NoError(t, err)

	assert.Equal(t, path, cfg.File)
	assert.Equal(t, 45*time.Second, cfg.Deployment.Timeout)
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yml")

	_, err := Load(path, nil)

	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), "deployment file "+path+" not found")
}

func TestLoadReportsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("deployment:\n  strategy:\n    step: 200\n"), 0o600))

	_, err := Load(path, nil)

	require.ErrorIs(t, err, types.ErrConfiguration)
	assert.Contains(t, err.Error(), path)
}

func TestEnviron(t *testing.T) {
	t.Setenv("CLOUDIO_TEST_VALUE", "a=b")

	env := Environ()

	assert.Equal(t, "a=b", env["CLOUDIO_TEST_VALUE"])
}
