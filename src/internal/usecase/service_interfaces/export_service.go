package service_interfaces

import "context"

type ExportService interface {
	Export(ctx context.Context, digest string) error
}
