package jobs

import (
	"fmt"
	"strings"
)

// ParseVolume parses the compact CLI mount grammar
//
//	storage://<path>:<container_path>[:ro|rw]
//
// Mode defaults to rw. Paths without a //-prefix (storage:dir) and the ~
// shorthand are resolved relative to owner's storage root.
func ParseVolume(owner, spec string) (Volume, error) {
	parts := strings.Split(spec, ":")
	if parts[0] != "storage" || len(parts) < 3 || len(parts) > 4 {
		return Volume{}, fmt.Errorf("invalid volume specification %q", spec)
	}

	readOnly := false
	if len(parts) == 4 {
		switch parts[3] {
		case "ro":
			readOnly = true
		case "rw":
		default:
			return Volume{}, fmt.Errorf("wrong ReadWrite/ReadOnly mode spec %q", spec)
		}
	}

	storage, err := resolveStoragePath(owner, parts[1])
	if err != nil {
		return Volume{}, fmt.Errorf("invalid volume specification %q: %w", spec, err)
	}

	containerPath := parts[2]
	if !strings.HasPrefix(containerPath, "/") {
		return Volume{}, fmt.Errorf("invalid volume specification %q: container path must be absolute", spec)
	}

	return Volume{Storage: storage, ContainerPath: containerPath, ReadOnly: readOnly}, nil
}

// ParseVolumes parses a list of mount specs, preserving order.
func ParseVolumes(owner string, specs []string) ([]Volume, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make([]Volume, 0, len(specs))
	for _, spec := range specs {
		v, err := ParseVolume(owner, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func resolveStoragePath(owner, raw string) (string, error) {
	path := raw
	absolute := strings.HasPrefix(raw, "//")
	if absolute {
		path = strings.TrimPrefix(raw, "//")
	}
	if strings.HasPrefix(path, "~") {
		path = owner + strings.TrimPrefix(path, "~")
	} else if !absolute {
		// relative form storage:dir resolves under the owner root
		if path == "" {
			path = owner
		} else {
			path = owner + "/" + path
		}
	} else if path == "" {
		path = owner
	}
	path = strings.TrimRight(path, "/")
	if path == "" {
		return "", fmt.Errorf("empty storage path")
	}
	return "storage://" + path, nil
}
