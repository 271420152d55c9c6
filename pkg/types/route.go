package types

import (
	"fmt"
	"slices"
	"strings"
)

// RouteKey is a parsed gateway route key of the form
// <deployment>/<cluster>/<service>/<port>
type RouteKey struct {
	Segments []string
}

// ParseRouteKey splits a route key on '/'
func ParseRouteKey(s string) RouteKey {
	return RouteKey{Segments: strings.Split(s, "/")}
}

func (r RouteKey) String() string {
	return strings.Join(r.Segments, "/")
}

func (r RouteKey) segment(i int) string {
	if i >= len(r.Segments) {
		return ""
	}
	return r.Segments[i]
}

// Deployment returns the deployment segment
func (r RouteKey) Deployment() string {
	return r.segment(0)
}

// Service returns the service segment
func (r RouteKey) Service() string {
	return r.segment(2)
}

// References reports whether any segment equals service
func (r RouteKey) References(service string) bool {
	return slices.Contains(r.Segments, service)
}

// WithDeployment returns a copy with the deployment segment replaced
func (r RouteKey) WithDeployment(deployment string) RouteKey {
	segments := slices.Clone(r.Segments)
	if len(segments) == 0 {
		segments = []string{deployment}
	} else {
		segments[0] = deployment
	}
	return RouteKey{Segments: segments}
}

// MatchKind tags the result of matching a predicate against route keys
type MatchKind int

const (
	NoMatch MatchKind = iota
	Matched
	AmbiguousMatch
)

func (k MatchKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case AmbiguousMatch:
		return "ambiguous"
	default:
		return "no match"
	}
}

// RouteMatch is the outcome of MatchRoute. Route is only set for Matched.
type RouteMatch struct {
	Kind       MatchKind
	Route      RouteKey
	Candidates []RouteKey
}

// MatchRoute applies pred to every key. Exactly one hit yields Matched.
func MatchRoute(keys []RouteKey, pred func(RouteKey) bool) RouteMatch {
	var hits []RouteKey
	for _, k := range keys {
		if pred(k) {
			hits = append(hits, k)
		}
	}

	switch len(hits) {
	case 0:
		return RouteMatch{Kind: NoMatch}
	case 1:
		return RouteMatch{Kind: Matched, Route: hits[0], Candidates: hits}
	default:
		return RouteMatch{Kind: AmbiguousMatch, Candidates: hits}
	}
}

// ClassifyRoutes splits a gateway's route keys into the source route (the one
// not referencing service) and the target route (the one that does).
func ClassifyRoutes(keys []string, service string) (source, target RouteKey, err error) {
	parsed := make([]RouteKey, 0, len(keys))
	for _, k := range keys {
		parsed = append(parsed, ParseRouteKey(k))
	}

	sourceMatch := MatchRoute(parsed, func(r RouteKey) bool { return !r.References(service) })
	targetMatch := MatchRoute(parsed, func(r RouteKey) bool { return r.References(service) })

	if err := matchErr("source", service, sourceMatch); err != nil {
		return RouteKey{}, RouteKey{}, err
	}
	if err := matchErr("target", service, targetMatch); err != nil {
		return RouteKey{}, RouteKey{}, err
	}
	return sourceMatch.Route, targetMatch.Route, nil
}

func matchErr(role, service string, m RouteMatch) error {
	switch m.Kind {
	case Matched:
		return nil
	case AmbiguousMatch:
		return fmt.Errorf("%s route for service %s: %d candidates: %w", role, service, len(m.Candidates), ErrAmbiguousRoute)
	default:
		return fmt.Errorf("%s route for service %s: %w", role, service, ErrNotFound)
	}
}
