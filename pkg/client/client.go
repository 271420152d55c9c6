package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/metrics"
	"github.com/cuemby/cloudio/pkg/types"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config locates and authenticates against the platform API
type Config struct {
	URL            string        `envconfig:"VAMP_URL" default:"http://localhost:8080/api/v1"`
	Token          string        `envconfig:"VAMP_TOKEN"`
	RequestTimeout time.Duration `envconfig:"VAMP_REQUEST_TIMEOUT" default:"30s"`
}

// ConfigFromEnv reads the platform connection settings from the environment
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read platform settings: %w", err)
	}
	return cfg, nil
}

// Client talks to the platform REST API
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates a new platform client
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid platform URL %q: %w", cfg.URL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid platform URL %q: scheme and host are required", cfg.URL)
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.RequestTimeout

	return &Client{
		baseURL: u,
		token:   cfg.Token,
		http:    httpClient,
		logger:  log.WithComponent("client"),
	}, nil
}

// PlatformError is returned for every non-2xx platform response
type PlatformError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *PlatformError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is makes 404 responses match types.ErrNotFound
func (e *PlatformError) Is(target error) bool {
	return target == types.ErrNotFound && e.StatusCode == http.StatusNotFound
}

type blueprintReference struct {
	Reference string `json:"reference"`
}

// CreateBlueprint submits a blueprint
func (c *Client) CreateBlueprint(ctx context.Context, blueprint *types.Blueprint) (*types.Blueprint, error) {
	var created types.Blueprint
	if err := c.do(ctx, "create_blueprint", http.MethodPost, "/blueprints", nil, blueprint, &created); err != nil {
		return nil, err
	}
	if created.Name == "" {
		created.Name = blueprint.Name
	}
	return &created, nil
}

// GetDeployment returns the named deployment. Absent deployments yield an
// error matching types.ErrNotFound.
func (c *Client) GetDeployment(ctx context.Context, name string) (*types.Deployment, error) {
	var d types.Deployment
	if err := c.do(ctx, "get_deployment", http.MethodGet, resourcePath("deployments", name), nil, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Deploy instantiates blueprint as a new deployment
func (c *Client) Deploy(ctx context.Context, deployment, blueprint string) (*types.Deployment, error) {
	return c.deployment(ctx, "deploy", http.MethodPost, deployment, blueprint)
}

// Merge adds blueprint to an existing deployment
func (c *Client) Merge(ctx context.Context, deployment, blueprint string) (*types.Deployment, error) {
	return c.deployment(ctx, "merge", http.MethodPut, deployment, blueprint)
}

// Undeploy removes the services of blueprint from a deployment
func (c *Client) Undeploy(ctx context.Context, deployment, blueprint string) error {
	return c.do(ctx, "undeploy", http.MethodDelete, resourcePath("deployments", deployment), nil,
		blueprintReference{Reference: blueprint}, nil)
}

func (c *Client) deployment(ctx context.Context, op, method, deployment, blueprint string) (*types.Deployment, error) {
	var d types.Deployment
	err := c.do(ctx, op, method, resourcePath("deployments", deployment), nil,
		blueprintReference{Reference: blueprint}, &d)
	if err != nil {
		return nil, err
	}
	if d.Name == "" {
		d.Name = deployment
	}
	return &d, nil
}

// GetGateway returns the named gateway
func (c *Client) GetGateway(ctx context.Context, name string) (*types.Gateway, error) {
	var g types.Gateway
	if err := c.do(ctx, "get_gateway", http.MethodGet, resourcePath("gateways", name), nil, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGateway submits a gateway
func (c *Client) CreateGateway(ctx context.Context, gateway *types.Gateway) (*types.Gateway, error) {
	var created types.Gateway
	if err := c.do(ctx, "create_gateway", http.MethodPost, "/gateways", nil, gateway, &created); err != nil {
		return nil, err
	}
	if created.Name == "" {
		created.Name = gateway.Name
	}
	return &created, nil
}

// CreateWorkflow submits a workflow
func (c *Client) CreateWorkflow(ctx context.Context, workflow *types.Workflow) (*types.Workflow, error) {
	var created types.Workflow
	if err := c.do(ctx, "create_workflow", http.MethodPost, "/workflows", nil, workflow, &created); err != nil {
		return nil, err
	}
	if created.Name == "" {
		created.Name = workflow.Name
	}
	return &created, nil
}

// DeleteWorkflow removes the named workflow
func (c *Client) DeleteWorkflow(ctx context.Context, name string) error {
	return c.do(ctx, "delete_workflow", http.MethodDelete, resourcePath("workflows", name), nil, nil, nil)
}

// ListEvents lists events of eventType carrying every one of tags
func (c *Client) ListEvents(ctx context.Context, eventType string, tags ...string) ([]types.Event, error) {
	query := url.Values{}
	if eventType != "" {
		query.Set("type", eventType)
	}
	for _, tag := range tags {
		query.Add("tag", tag)
	}

	var list []types.Event
	if err := c.do(ctx, "list_events", http.MethodGet, "/events", query, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// resourcePath escapes each segment of name, keeping the '/' separators
// that gateway names use.
func resourcePath(kind, name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/" + kind + "/" + strings.Join(segments, "/")
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	timer := metrics.NewTimer()
	status := "error"
	defer func() {
		metrics.PlatformRequestsTotal.WithLabelValues(op, status).Inc()
		timer.ObserveDurationVec(metrics.PlatformRequestDuration, op)
	}()

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL.JoinPath(path)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug().Str("method", method).Str("url", target.String()).Msg("Platform request")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	status = strconv.Itoa(resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &PlatformError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       strings.TrimSpace(string(data)),
		}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
