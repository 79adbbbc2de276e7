// Package catalog adapts the catalog application service to the order
// context's pricing port.
package catalog

import (
	"context"

	catalogapp "github.com/rtwlabs/roastery-backend/internal/catalog/application"
	"github.com/rtwlabs/roastery-backend/internal/order/application"
)

type Client struct {
	catalog *catalogapp.Service
}

func NewClient(catalog *catalogapp.Service) *Client {
	return &Client{catalog: catalog}
}

func (c *Client) Quote(ctx context.Context, productID, blendID string) (application.Quote, error) {
	q, err := c.catalog.Quote(ctx, productID, blendID)
	if err != nil {
		return application.Quote{}, err
	}
	return application.Quote{Name: q.Name, UnitCents: q.UnitCents, Available: q.Available}, nil
}
