package ports

import "context"

// ReportArchive stores rendered reports. Implementations may be disabled,
// in which case Put returns an empty location and no error.
type ReportArchive interface {
	Put(ctx context.Context, name string, contentType string, body []byte) (location string, err error)
}
