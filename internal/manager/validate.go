package manager

import "podd/pkg/types"

// validateName enforces the pod naming rules: 3-50 characters, letters,
// digits, hyphen, underscore.
func validateName(name string) error {
	if len(name) < 3 || len(name) > 50 {
		return errValidationf("pod name must be between 3 and 50 characters")
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return errValidationf("pod name can only contain letters, numbers, hyphens, and underscores")
		}
	}
	return nil
}

// validateConfig enforces the provisioning option ranges.
func validateConfig(cfg types.PodConfig) error {
	if cfg.ContainerDiskGB < 50 || cfg.ContainerDiskGB > 500 {
		return errValidationf("container_disk_gb must be between 50 and 500")
	}
	if cfg.VolumeDiskGB < 1 || cfg.VolumeDiskGB > 1000 {
		return errValidationf("volume_disk_gb must be between 1 and 1000")
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return errValidationf("port must be between 1024 and 65535")
	}
	return nil
}
