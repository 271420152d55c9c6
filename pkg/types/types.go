package types

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// PhaseDone is the phase name reported for a service that finished deploying
const PhaseDone = "Done"

// Blueprint is a named template describing clusters of services
type Blueprint struct {
	Name     string         `json:"name" yaml:"name"`
	Clusters Clusters       `json:"clusters" yaml:"clusters"`
	Extra    map[string]any `json:"-" yaml:",inline"`
}

// Cluster is a named group of services within a blueprint or deployment
type Cluster struct {
	Name     string         `json:"name,omitempty" yaml:"name,omitempty"`
	Services []Service      `json:"services" yaml:"services"`
	Extra    map[string]any `json:"-" yaml:",inline"`
}

// Service places a breed inside a cluster
type Service struct {
	Breed  Breed          `json:"breed" yaml:"breed"`
	Status *ServiceStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Extra  map[string]any `json:"-" yaml:",inline"`
}

// Breed is a named, versioned deployable unit
type Breed struct {
	Name       string         `json:"name" yaml:"name"`
	Deployable string         `json:"deployable,omitempty" yaml:"deployable,omitempty"`
	Extra      map[string]any `json:"-" yaml:",inline"`
}

// ServiceStatus is the live status the platform reports for a service
type ServiceStatus struct {
	Phase Phase `json:"phase" yaml:"phase"`
}

// Phase is a step of a service's deployment lifecycle
type Phase struct {
	Name string `json:"name" yaml:"name"`
}

// Deployment is a live instantiation of one or more blueprints
type Deployment struct {
	Name     string   `json:"name"`
	Clusters Clusters `json:"clusters"`
}

// Gateway maps route keys onto route definitions
type Gateway struct {
	Name   string         `json:"name" yaml:"name"`
	Routes map[string]any `json:"routes" yaml:"routes"`
	Extra  map[string]any `json:"-" yaml:",inline"`
}

// Workflow is a scheduled execution unit on the platform
type Workflow struct {
	Name                 string            `json:"name"`
	Breed                BreedReference    `json:"breed"`
	Schedule             string            `json:"schedule"`
	EnvironmentVariables map[string]string `json:"environment_variables"`
}

// BreedReference points at a breed by name
type BreedReference struct {
	Reference string `json:"reference"`
}

// Event is an immutable fact emitted by the platform
type Event struct {
	Type      string    `json:"type"`
	Value     any       `json:"value,omitempty"`
	Tags      []string  `json:"tags"`
	Timestamp time.Time `json:"timestamp"`
}

// HasTag reports whether the event carries tag
func (e Event) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// RouteKeys returns the gateway's route keys in sorted order
func (g *Gateway) RouteKeys() []string {
	keys := make([]string, 0, len(g.Routes))
	for k := range g.Routes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Select returns the cluster addressed by selector. An empty selector picks
// the first cluster, a number picks by index and anything else by name.
func (c Clusters) Select(selector string) (*Cluster, error) {
	if selector == "" {
		selector = "0"
	}
	if i, err := strconv.Atoi(selector); err == nil {
		if i < 0 || i >= len(c) {
			return nil, fmt.Errorf("cluster %s: %w", selector, ErrNotFound)
		}
		return &c[i], nil
	}
	for i := range c {
		if c[i].Name == selector {
			return &c[i], nil
		}
	}
	return nil, fmt.Errorf("cluster %s: %w", selector, ErrNotFound)
}

// FindBreedPrefix returns the first service whose breed name starts with prefix
func (c *Cluster) FindBreedPrefix(prefix string) *Service {
	for i := range c.Services {
		if strings.HasPrefix(c.Services[i].Breed.Name, prefix) {
			return &c.Services[i]
		}
	}
	return nil
}

// FindService returns the service whose breed is named name
func (c *Cluster) FindService(name string) *Service {
	for i := range c.Services {
		if c.Services[i].Breed.Name == name {
			return &c.Services[i]
		}
	}
	return nil
}

// PhaseName returns the service's phase, or "" when no status was reported
func (s *Service) PhaseName() string {
	if s.Status == nil {
		return ""
	}
	return s.Status.Phase.Name
}
