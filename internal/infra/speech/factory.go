package speech

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// New creates a speech device from configuration.
func New(deviceType string, settings map[string]any) (Device, error) {
	zlog.Debug().Msgf("creating speech device: type=%s settings=%+v", deviceType, settings)

	switch deviceType {
	case "command":
		return NewCommandDevice(settings)

	case "noop", "":
		return NewNoopDevice(), nil

	default:
		return nil, errors.Newf("unsupported speech device type: %s", deviceType)
	}
}
