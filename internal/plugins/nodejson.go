package plugins

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"

	"bagger/internal/bag"
	"bagger/internal/logging"
	"bagger/internal/services"
)

const (
	// NodeJSONName is the registry name of the node JSON plugin.
	NodeJSONName = "AddNodeJSON"
	// NodeJSONFilename is the payload path the node JSON is stored under.
	NodeJSONFilename = "node.json"
)

// NodeJSON adds the node's REST representation to the bag as node.json.
type NodeJSON struct {
	logger *slog.Logger
}

// NewNodeJSON constructs the node JSON plugin.
func NewNodeJSON(logger *slog.Logger) *NodeJSON {
	return &NodeJSON{logger: logging.NewComponentLogger(logger, "nodejson")}
}

// Name returns the plugin's registry name.
func (p *NodeJSON) Name() string { return NodeJSONName }

// Execute writes nodeJSON, indented, into stagingDir and adds it to the bag.
func (p *NodeJSON) Execute(ctx context.Context, b *bag.Bag, stagingDir, nodeID string, nodeJSON []byte, _ string) (*bag.Bag, error) {
	logger := logging.WithContext(services.WithNodeID(ctx, nodeID), p.logger)
	if len(bytes.TrimSpace(nodeJSON)) == 0 {
		return b, services.Wrap(services.ErrValidation, "nodejson", "execute", "node JSON is empty for node "+nodeID, nil)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, nodeJSON, "", "  "); err != nil {
		return b, services.Wrap(services.ErrMalformedResponse, "nodejson", "indent", nodeID, err)
	}
	pretty.WriteByte('\n')

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return b, services.Wrap(services.ErrFilesystem, "nodejson", "prepare staging", stagingDir, err)
	}
	target := filepath.Join(stagingDir, NodeJSONFilename)
	if err := os.WriteFile(target, pretty.Bytes(), 0o644); err != nil {
		return b, services.Wrap(services.ErrFilesystem, "nodejson", "write", target, err)
	}
	if err := b.AddFile(target, NodeJSONFilename); err != nil {
		return b, services.Wrap(services.ErrFilesystem, "nodejson", "add to bag", NodeJSONFilename, err)
	}
	logger.Info("node json added", logging.Int("size_bytes", pretty.Len()))
	return b, nil
}
