package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rxtech-lab/stock-replay/pkg/errors"
)

// CheckConfigCompatibility checks that a configuration file written for
// configVersion can be read by an application at appVersion.
//
// Rules:
//   - "main" on either side (development build) skips the check
//   - an empty configVersion is accepted (files written before versioning)
//   - major and minor must match; patch may differ
//
// Examples:
//   - app 0.1.0, config 0.1.3 -> OK
//   - app 0.2.0, config 0.1.0 -> ERROR (minor differs)
//   - app 1.0.0, config 0.1.0 -> ERROR (major differs)
func CheckConfigCompatibility(appVersion, configVersion string) error {
	appVersion = strings.TrimPrefix(appVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if appVersion == "main" || configVersion == "main" || configVersion == "" {
		return nil
	}

	appSemver, err := semver.NewVersion(appVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid application version '%s'", appVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if appSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "major version mismatch: application is %d.x.x but config requires %d.x.x",
			appSemver.Major(), configSemver.Major())
	}

	if appSemver.Minor() != configSemver.Minor() {
		return errors.Newf(errors.ErrCodeInvalidVersion, "minor version mismatch: application is %d.%d.x but config requires %d.%d.x",
			appSemver.Major(), appSemver.Minor(),
			configSemver.Major(), configSemver.Minor())
	}

	return nil
}
