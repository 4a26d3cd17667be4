package market

import (
	"bytes"
	"encoding/json"

	"github.com/DRSN-tech/dropship-sync/internal/usecase"
)

type productPayload struct {
	SellerProductName string            `json:"sellerProductName"`
	SellerProductID   string            `json:"sellerProductId"`
	SalePrice         int64             `json:"salePrice"`
	MaximumQuantity   int               `json:"maximumQuantity"`
	Images            []productImage    `json:"images"`
	CategoryCode      string            `json:"categoryCode"`
	Attributes        map[string]string `json:"attributes"`
	Description       string            `json:"description"`
}

type productImage struct {
	ImageURL string `json:"imageUrl"`
}

type inventoryPayload struct {
	SellerProductID string `json:"sellerProductId"`
	Quantity        int    `json:"quantity"`
}

type pricePayload struct {
	SellerProductID string `json:"sellerProductId"`
	Price           int64  `json:"price"`
}

type uploadResponse struct {
	ProductID        flexibleID `json:"productId"`
	ChannelProductNo flexibleID `json:"channelProductNo"`
}

type productStatusResponse struct {
	Status string `json:"status"`
}

// flexibleID принимает идентификатор и строкой, и числом.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

func (f flexibleID) ptr() *string {
	if f == "" {
		return nil
	}

	s := string(f)
	return &s
}

func toProductPayload(p *usecase.MarketProduct) productPayload {
	images := make([]productImage, 0, len(p.Images))
	for _, url := range p.Images {
		images = append(images, productImage{ImageURL: url})
	}

	description := ""
	if p.Description != nil {
		description = *p.Description
	}

	return productPayload{
		SellerProductName: p.Title,
		SellerProductID:   p.ID,
		SalePrice:         p.Price,
		MaximumQuantity:   p.Stock,
		Images:            images,
		CategoryCode:      p.CategoryID,
		Attributes:        p.Attributes,
		Description:       description,
	}
}
