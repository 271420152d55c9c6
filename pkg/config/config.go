package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cuemby/cloudio/pkg/types"
	"github.com/valyala/fasttemplate"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the descriptor read when no --file is given
const DefaultFile = ".cloudio.yml"

// Config is the validated deployment descriptor
type Config struct {
	File       string
	Deployment Deployment
	Vamp       Vamp
}

// Deployment holds the health check and migration settings
type Deployment struct {
	// Timeout bounds the deployment health check
	Timeout  time.Duration
	Strategy Strategy
}

// Strategy parameterizes the migration workflow
type Strategy struct {
	Name string
	// Step is the percentage of traffic shifted per period
	Step    int
	Period  time.Duration
	Timeout time.Duration
	Metric  Metric
}

// Metric is an optional metric gate passed to the workflow
type Metric struct {
	Name       string `yaml:"name"`
	Expression string `yaml:"expression"`
}

// Enabled reports whether both name and expression are set
func (m Metric) Enabled() bool {
	return m.Name != "" && m.Expression != ""
}

// Vamp holds the platform templates carried by the descriptor
type Vamp struct {
	Blueprint *types.Blueprint
	Gateway   *types.Gateway
}

// document mirrors the YAML layout. Durations are given in seconds.
type document struct {
	File       string `yaml:"file"`
	Deployment struct {
		Timeout  int `yaml:"timeout"`
		Strategy struct {
			Name    string `yaml:"name"`
			Step    int    `yaml:"step"`
			Period  int    `yaml:"period"`
			Timeout int    `yaml:"timeout"`
			Metric  Metric `yaml:"metric"`
		} `yaml:"strategy"`
	} `yaml:"deployment"`
	Vamp struct {
		Blueprint *types.Blueprint `yaml:"blueprint"`
		Gateway   *types.Gateway   `yaml:"gateway"`
	} `yaml:"vamp"`
}

func defaultDocument() document {
	var d document
	d.File = DefaultFile
	d.Deployment.Timeout = 30
	d.Deployment.Strategy.Name = "canary"
	d.Deployment.Strategy.Step = 25
	d.Deployment.Strategy.Period = 15
	d.Deployment.Strategy.Timeout = 60
	return d
}

// Default returns the configuration used for every key the descriptor omits
func Default() Config {
	return defaultDocument().config()
}

func (d document) config() Config {
	return Config{
		File: d.File,
		Deployment: Deployment{
			Timeout: time.Duration(d.Deployment.Timeout) * time.Second,
			Strategy: Strategy{
				Name:    d.Deployment.Strategy.Name,
				Step:    d.Deployment.Strategy.Step,
				Period:  time.Duration(d.Deployment.Strategy.Period) * time.Second,
				Timeout: time.Duration(d.Deployment.Strategy.Timeout) * time.Second,
				Metric:  d.Deployment.Strategy.Metric,
			},
		},
		Vamp: Vamp{
			Blueprint: d.Vamp.Blueprint,
			Gateway:   d.Vamp.Gateway,
		},
	}
}

// Load reads, renders and validates the descriptor at path
func Load(path string, env map[string]string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("deployment file %s not found: %w", path, types.ErrConfiguration)
		}
		return nil, fmt.Errorf("failed to read deployment file: %w", err)
	}

	cfg, err := Parse(data, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.File = path
	return cfg, nil
}

// Parse renders data against env, decodes it over the defaults and validates the result
func Parse(data []byte, env map[string]string) (*Config, error) {
	rendered := Render(string(data), env)

	doc := defaultDocument()
	if err := yaml.Unmarshal([]byte(rendered), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %v: %w", err, types.ErrConfiguration)
	}

	cfg := doc.config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Render substitutes every {{ NAME }} tag with env[NAME]. Unknown names render empty.
func Render(content string, env map[string]string) string {
	return fasttemplate.ExecuteFuncString(content, "{{", "}}", func(w io.Writer, tag string) (int, error) {
		return w.Write([]byte(env[strings.TrimSpace(tag)]))
	})
}

// Environ returns the process environment as a map
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Validate checks every field once. Errors wrap types.ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if c.Deployment.Timeout <= 0 {
		problems = append(problems, "deployment.timeout must be positive")
	}
	s := c.Deployment.Strategy
	if s.Name == "" {
		problems = append(problems, "deployment.strategy.name is required")
	}
	if s.Step < 1 || s.Step > 100 {
		problems = append(problems, fmt.Sprintf("deployment.strategy.step must be between 1 and 100, got %d", s.Step))
	}
	if s.Period <= 0 {
		problems = append(problems, "deployment.strategy.period must be positive")
	}
	if s.Timeout <= 0 {
		problems = append(problems, "deployment.strategy.timeout must be positive")
	}
	if (s.Metric.Name == "") != (s.Metric.Expression == "") {
		problems = append(problems, "deployment.strategy.metric needs both name and expression")
	}
	if g := c.Vamp.Gateway; g != nil && len(g.Routes) == 0 {
		problems = append(problems, "vamp.gateway.routes must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s: %w", strings.Join(problems, "; "), types.ErrConfiguration)
	}
	return nil
}
