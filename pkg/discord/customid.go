package discord

import (
	"fmt"
	"strings"
)

const customIDSeparator = ":"

// EncodeCustomID builds a component custom ID in the form prefix:action[:data].
func EncodeCustomID(prefix string, action string, data ...string) string {
	return strings.Join(append([]string{prefix, action}, data...), customIDSeparator)
}

func DecodeCustomID(customID string) (string, string, []string, error) {
	parts := strings.Split(customID, customIDSeparator)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", nil, fmt.Errorf("unknown customID format: %s", customID)
	}
	return parts[0], parts[1], parts[2:], nil
}
