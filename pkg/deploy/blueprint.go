package deploy

import (
	"context"
	"fmt"

	"github.com/cuemby/cloudio/pkg/config"
	"github.com/cuemby/cloudio/pkg/log"
	"github.com/cuemby/cloudio/pkg/types"
)

// BlueprintCreator submits blueprints
type BlueprintCreator interface {
	CreateBlueprint(ctx context.Context, blueprint *types.Blueprint) (*types.Blueprint, error)
}

// CreateBlueprint specializes the descriptor's blueprint for service and
// submits it. The blueprint is renamed to service, and the first breed in
// the selected cluster whose name starts with breedPrefix is renamed to
// service and pointed at deployable. The descriptor's blueprint is modified
// in place.
func CreateBlueprint(ctx context.Context, p BlueprintCreator, service string, cfg *config.Config, cluster, breedPrefix, deployable string) (*types.Blueprint, error) {
	blueprint := cfg.Vamp.Blueprint
	if blueprint == nil {
		return nil, fmt.Errorf("no blueprint found in file %s: %w", cfg.File, types.ErrConfiguration)
	}
	blueprint.Name = service

	c, err := blueprint.Clusters.Select(cluster)
	if err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", blueprint.Name, err)
	}

	svc := c.FindBreedPrefix(breedPrefix)
	if svc == nil {
		return nil, fmt.Errorf("breed which starts with %s in blueprint %s: %w", breedPrefix, blueprint.Name, types.ErrNotFound)
	}
	svc.Breed.Name = service
	svc.Breed.Deployable = deployable

	created, err := p.CreateBlueprint(ctx, blueprint)
	if err != nil {
		return nil, fmt.Errorf("failed to create blueprint %s: %w", blueprint.Name, err)
	}

	logger := log.WithComponent("deploy")
	logger.Info().
		Str("blueprint", created.Name).
		Str("breed", service).
		Str("deployable", deployable).
		Msg("Created blueprint")
	return created, nil
}
