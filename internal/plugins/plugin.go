package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"bagger/internal/bag"
	"bagger/internal/config"
	"bagger/internal/plugins/addmedia"
	"bagger/internal/services"
	"bagger/internal/services/drupal"
)

// Plugin modifies a bag for one node. stagingDir holds temporary downloads;
// nodeJSON is the node's REST representation; token may be empty.
type Plugin interface {
	Name() string
	Execute(ctx context.Context, b *bag.Bag, stagingDir, nodeID string, nodeJSON []byte, token string) (*bag.Bag, error)
}

// Dependencies are the collaborators plugin factories may use.
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	// HTTPDoer overrides the Drupal transport; nil uses a client built from config.
	HTTPDoer drupal.HTTPDoer
}

// Factory constructs a plugin.
type Factory func(Dependencies) (Plugin, error)

var registry = map[string]Factory{
	addmedia.Name: func(deps Dependencies) (Plugin, error) {
		return addmedia.New(deps.Config.MediaSettings(), deps.Logger, addmedia.WithHTTPDoer(deps.HTTPDoer)), nil
	},
	NodeJSONName: func(deps Dependencies) (Plugin, error) {
		return NewNodeJSON(deps.Logger), nil
	},
}

// Names returns the registered plugin names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a registered plugin.
func Known(name string) bool {
	_, ok := registry[name]
	return ok
}

// Build instantiates plugins in the order given.
func Build(names []string, deps Dependencies) ([]Plugin, error) {
	if deps.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "plugins", "build", "configuration is required", nil)
	}
	out := make([]Plugin, 0, len(names))
	for _, name := range names {
		factory, ok := registry[strings.TrimSpace(name)]
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "plugins", "build",
				fmt.Sprintf("unknown plugin %q (available: %s)", name, strings.Join(Names(), ", ")), nil)
		}
		plugin, err := factory(deps)
		if err != nil {
			return nil, err
		}
		out = append(out, plugin)
	}
	return out, nil
}
