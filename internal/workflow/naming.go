package workflow

import (
	"strings"

	"bagger/internal/config"
	"bagger/internal/services"
	"bagger/internal/services/drupal"
)

// BagName returns the directory name for a node's bag under template, which
// is either the node ID or the node UUID.
func BagName(template, nodeID string, node drupal.Node) (string, error) {
	switch template {
	case config.NameTemplateUUID:
		id := strings.TrimSpace(node.UUIDValue())
		if id == "" {
			return "", services.Wrap(services.ErrMalformedResponse, stageName, "bag name", "node "+nodeID+" has no uuid", nil)
		}
		return SanitizeName(id), nil
	case config.NameTemplateNodeID, "":
		return SanitizeName(nodeID), nil
	default:
		return "", services.Wrap(services.ErrConfiguration, stageName, "bag name", "unsupported bag.name_template "+template, nil)
	}
}

// SanitizeName reduces value to a single safe path segment for use under
// the staging and output roots.
func SanitizeName(value string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	name := strings.Trim(sb.String(), ".")
	if name == "" {
		return "_"
	}
	return name
}
