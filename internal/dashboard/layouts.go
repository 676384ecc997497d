package dashboard

import (
	"context"
	"errors"

	"github.com/prepdash/backend/internal/kv"
	"github.com/prepdash/backend/internal/models"
)

// DefaultLayouts is the widget grid per breakpoint before any user change.
func DefaultLayouts() models.Layouts {
	return models.Layouts{
		"lg": {
			{I: "stats", X: 0, Y: 0, W: 12, H: 1},
			{I: "incidents", X: 0, Y: 1, W: 8, H: 2},
			{I: "hazards", X: 8, Y: 1, W: 4, H: 2},
			{I: "alerts", X: 0, Y: 3, W: 12, H: 1},
		},
		"md": {
			{I: "stats", X: 0, Y: 0, W: 12, H: 1},
			{I: "incidents", X: 0, Y: 1, W: 8, H: 2},
			{I: "hazards", X: 8, Y: 1, W: 4, H: 2},
			{I: "alerts", X: 0, Y: 3, W: 12, H: 1},
		},
		"sm": {
			{I: "stats", X: 0, Y: 0, W: 6, H: 2},
			{I: "incidents", X: 0, Y: 2, W: 6, H: 2},
			{I: "hazards", X: 0, Y: 4, W: 6, H: 2},
			{I: "alerts", X: 0, Y: 6, W: 6, H: 1},
		},
		"xs": {
			{I: "stats", X: 0, Y: 0, W: 4, H: 2},
			{I: "incidents", X: 0, Y: 2, W: 4, H: 2},
			{I: "hazards", X: 0, Y: 4, W: 4, H: 2},
			{I: "alerts", X: 0, Y: 6, W: 4, H: 1},
		},
	}
}

// LoadLayouts returns the saved layouts, or the defaults if none were saved.
func LoadLayouts(ctx context.Context, store kv.Store) (models.Layouts, error) {
	var layouts models.Layouts
	err := kv.GetJSON(ctx, store, LayoutsKey, &layouts)
	if errors.Is(err, kv.ErrNotFound) || (err == nil && len(layouts) == 0) {
		return DefaultLayouts(), nil
	}
	if err != nil {
		return nil, err
	}
	return layouts, nil
}

func SaveLayouts(ctx context.Context, store kv.Store, layouts models.Layouts) error {
	return kv.SetJSON(ctx, store, LayoutsKey, layouts)
}

// ResetLayouts drops saved layouts so the defaults apply again.
func ResetLayouts(ctx context.Context, store kv.Store) error {
	return store.Clear(ctx, LayoutsKey)
}
