package deploy

import (
	"context"
	"fmt"

	"github.com/cuemby/cloudio/pkg/config"
	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/types"
)

// GatewayCreator submits gateways
type GatewayCreator interface {
	CreateGateway(ctx context.Context, gateway *types.Gateway) (*types.Gateway, error)
}

// CreateGateway submits the descriptor's gateway for deployment, with the
// deployment segment of its route key replaced by the deployment's name.
// It returns nil when the descriptor has no gateway.
func CreateGateway(ctx context.Context, p GatewayCreator, deployment *types.Deployment, cfg *config.Config) (*types.Gateway, error) {
	logger := log.WithDeployment("deploy", deployment.Name)

	if cfg.Vamp.Gateway == nil {
		logger.Info().Str("file", cfg.File).Msg("No gateway found in deployment file")
		return nil, nil
	}

	keys := cfg.Vamp.Gateway.RouteKeys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("gateway %s has no routes: %w", cfg.Vamp.Gateway.Name, types.ErrConfiguration)
	}
	if len(keys) > 1 {
		logger.Warn().Strs("routes", keys).Msg("Gateway has more than one route, using the first")
	}

	route := types.ParseRouteKey(keys[0]).WithDeployment(deployment.Name)

	gateway := *cfg.Vamp.Gateway
	gateway.Routes = map[string]any{
		route.String(): cfg.Vamp.Gateway.Routes[keys[0]],
	}

	created, err := p.CreateGateway(ctx, &gateway)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway %s: %w", gateway.Name, err)
	}

	logger.Info().Str("gateway", created.Name).Str("route", route.String()).Msg("Created gateway")
	return created, nil
}
