package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-bravia/internal/accessory"
	"github.com/nerrad567/gray-logic-bravia/internal/favourites"
	"github.com/nerrad567/gray-logic-bravia/internal/infrastructure/config"
)

// Reconciler aligns the accessory directory with the configured fleet.
// It is the only component that talks to the directory wholesale; the
// controllers it produces touch only their own entry.
type Reconciler struct {
	repo   accessory.Repository
	logger Logger
}

// NewReconciler creates a reconciler over the given directory.
func NewReconciler(repo accessory.Repository, logger Logger) *Reconciler {
	return &Reconciler{repo: repo, logger: orNop(logger)}
}

// Reconcile brings the directory in line with the configured devices.
//
// For each configured device it reuses the existing directory entry when
// present (updating stored config and rebuilding inputs) or creates a new
// one. Devices missing required fields are skipped with a log message,
// not fatal to the batch. Directory entries whose identity is not among
// the configured set are removed in one batch at the end.
//
// Returns the reconciled accessories, in configuration order.
func (r *Reconciler) Reconcile(ctx context.Context, devices []config.DeviceConfig, favs []favourites.Favourite) ([]*accessory.Accessory, error) {
	existing, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing directory: %w", err)
	}

	inputs := BuildInputs(favs)
	configured := make(map[string]bool, len(devices))
	accessories := make([]*accessory.Accessory, 0, len(devices))

	for _, dev := range devices {
		if err := validateDevice(dev); err != nil {
			r.logger.Warn("skipping misconfigured device",
				"name", dev.Name,
				"ip", dev.IP,
				"error", err,
			)
			continue
		}

		id := accessory.IdentityFor(dev.Name, dev.IP)
		configured[id] = true

		acc, err := r.repo.GetByID(ctx, id)
		switch {
		case errors.Is(err, accessory.ErrNotFound):
			acc = &accessory.Accessory{ID: id}
			r.logger.Info("registering new television", "name", dev.Name, "ip", dev.IP)
		case err != nil:
			return nil, fmt.Errorf("looking up %s: %w", dev.Name, err)
		default:
			r.logger.Debug("reusing directory entry", "name", dev.Name, "id", id)
		}

		// Update stored config and inputs in place; identity and cached
		// runtime state survive.
		acc.Name = dev.Name
		acc.Address = dev.IP
		acc.Port = dev.Port
		acc.Source = dev.TVSource
		acc.Inputs = inputs

		if err := r.repo.Upsert(ctx, acc); err != nil {
			return nil, fmt.Errorf("upserting %s: %w", dev.Name, err)
		}

		accessories = append(accessories, acc)
	}

	// Collect and remove entries for devices no longer configured.
	var stale []string
	for _, acc := range existing {
		if !configured[acc.ID] {
			stale = append(stale, acc.ID)
			r.logger.Info("retiring stale directory entry", "name", acc.Name, "id", acc.ID)
		}
	}
	if len(stale) > 0 {
		if err := r.repo.RemoveBatch(ctx, stale); err != nil {
			return nil, fmt.Errorf("removing stale entries: %w", err)
		}
	}

	return accessories, nil
}

// validateDevice checks the fields a device cannot operate without.
func validateDevice(dev config.DeviceConfig) error {
	if dev.Name == "" {
		return ErrMissingName
	}
	if dev.IP == "" {
		return ErrMissingIP
	}
	return nil
}
