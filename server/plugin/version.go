package plugin

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// canonicalVersion validates a plugin version and returns it in canonical
// form without the leading "v". An empty version is allowed and stays empty.
func canonicalVersion(version string) (string, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return "", nil
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return strings.TrimPrefix(semver.Canonical(v), "v"), nil
}

// checkAPIVersion reports an error if a plugin requiring min cannot run on
// APIVersion.
func checkAPIVersion(min string) error {
	c, err := canonicalVersion(min)
	if err != nil || c == "" {
		return err
	}
	if semver.Compare("v"+c, APIVersion) > 0 {
		return fmt.Errorf("%w: needs %s, have %s", ErrIncompatible, c, strings.TrimPrefix(APIVersion, "v"))
	}
	return nil
}
