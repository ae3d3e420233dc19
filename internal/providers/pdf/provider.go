package pdf

import (
	"context"
	"io"
)

type Provider interface {
	GenerateWorkOrder(ctx context.Context, data WorkOrderData) (io.Reader, error)
}
