package archive

import (
	"context"

	"fleetcheck/internal/ports"
)

// Disabled drops reports. It is wired when archiving is turned off.
type Disabled struct{}

var _ ports.ReportArchive = Disabled{}

func (Disabled) Put(context.Context, string, string, []byte) (string, error) {
	return "", nil
}
