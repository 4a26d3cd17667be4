package supplier

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
)

const productsQuery = `
query GetProducts($accountId: String!, $itemKeys: [String!]) {
  products(accountId: $accountId, itemKeys: $itemKeys) {
    id
    title
    brand
    price { original sale marginRate }
    options { name value priceAdjustment stockQuantity }
    images
    category
    description
    manufacturer
    model
    estimatedShippingDays
    stockQuantity
  }
}`

const categoriesQuery = `
query GetCategories($accountId: String!) {
  categories(accountId: $accountId) {
    id
    name
    parentId
    level
  }
}`

const createOrderMutation = `
mutation CreateOrder($input: OrderInput!) {
  createOrder(input: $input) {
    key
    status
    products { itemKey quantity }
  }
}`

// authRequest — тело запроса на выпуск JWT.
type authRequest struct {
	Service  string `json:"service"`
	UserType string `json:"userType"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type productsData struct {
	Products []gqlProduct `json:"products"`
}

type gqlProduct struct {
	ID                    string      `json:"id"`
	Title                 string      `json:"title"`
	Brand                 string      `json:"brand"`
	Price                 gqlPrice    `json:"price"`
	Options               []gqlOption `json:"options"`
	Images                []string    `json:"images"`
	Category              string      `json:"category"`
	Description           *string     `json:"description"`
	Manufacturer          *string     `json:"manufacturer"`
	Model                 *string     `json:"model"`
	EstimatedShippingDays *int        `json:"estimatedShippingDays"`
	StockQuantity         *int        `json:"stockQuantity"`
}

type gqlPrice struct {
	Original   int64    `json:"original"`
	Sale       *int64   `json:"sale"`
	MarginRate *float64 `json:"marginRate"`
}

type gqlOption struct {
	Name            string `json:"name"`
	Value           string `json:"value"`
	PriceAdjustment int64  `json:"priceAdjustment"`
	StockQuantity   int    `json:"stockQuantity"`
}

type categoriesData struct {
	Categories []gqlCategory `json:"categories"`
}

type gqlCategory struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Level    int     `json:"level"`
}

type createOrderData struct {
	CreateOrder json.RawMessage `json:"createOrder"`
}

// MAPPERS

func toRawItem(p gqlProduct, supplierID string, fetchedAt time.Time) usecase.RawItem {
	options := make([]usecase.RawOption, 0, len(p.Options))
	for _, o := range p.Options {
		options = append(options, usecase.RawOption{
			Name:            o.Name,
			Value:           o.Value,
			PriceAdjustment: o.PriceAdjustment,
			StockQuantity:   o.StockQuantity,
		})
	}

	return usecase.RawItem{
		ID:    p.ID,
		Title: p.Title,
		Brand: p.Brand,
		Price: usecase.RawPrice{
			Original:   p.Price.Original,
			Sale:       p.Price.Sale,
			MarginRate: p.Price.MarginRate,
		},
		Options:               options,
		Images:                p.Images,
		Category:              p.Category,
		Description:           p.Description,
		Manufacturer:          p.Manufacturer,
		Model:                 p.Model,
		SupplierID:            supplierID,
		EstimatedShippingDays: p.EstimatedShippingDays,
		StockQuantity:         p.StockQuantity,
		FetchedAt:             fetchedAt,
	}
}

func toDomainCategory(c gqlCategory, supplierID string, now time.Time) domain.Category {
	category := domain.NewCategory(c.ID, supplierID, c.Name, c.ParentID, c.Level)
	category.CreatedAt = now

	return *category
}
