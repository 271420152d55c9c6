/*
Package types defines the platform resources and the values shared between
Cloudio packages.

Blueprint, Cluster, Service and Breed model only the fields Cloudio reads or
rewrites. Everything else in a deployment file is kept in their Extra maps
and emitted again when the resource is encoded as JSON, so the platform
receives the descriptor as written.

Clusters decode from either a list or a mapping keyed by cluster name. The
YAML mapping form keeps document order; the JSON object form is sorted by
name.

# Route keys

Gateway routes are keyed by slash separated paths:

	<deployment>/<cluster>/<service>/<port>

RouteKey parses them into segments. ClassifyRoutes splits the routes of a
gateway into the one serving a service and the one that does not, failing
with ErrAmbiguousRoute or ErrNotFound unless each side has exactly one
candidate.
*/
package types
