package domain

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultMarginRate — маржа по умолчанию для новых товаров.
	DefaultMarginRate = 0.3
	// DefaultMinMarginRate — минимальная маржа, при которой товар считается прибыльным.
	DefaultMinMarginRate = 0.1
	// DefaultShippingDays — ориентировочный срок доставки поставщика.
	DefaultShippingDays = 7
)

// PricePolicy описывает ценообразование товара. Цены хранятся в целых единицах валюты (KRW).
type PricePolicy struct {
	OriginalPrice int64
	SalePrice     *int64
	MarginRate    float64
}

func NewPricePolicy(original int64, sale *int64, marginRate float64) PricePolicy {
	return PricePolicy{
		OriginalPrice: original,
		SalePrice:     sale,
		MarginRate:    marginRate,
	}
}

// FinalPrice возвращает цену продажи: цену распродажи, если она задана,
// иначе исходную цену с учётом маржи (с отбрасыванием дробной части).
func (p PricePolicy) FinalPrice() int64 {
	if p.SalePrice != nil && *p.SalePrice > 0 {
		return *p.SalePrice
	}

	return decimal.NewFromInt(p.OriginalPrice).
		Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(p.MarginRate))).
		IntPart()
}

// IsProfitable сообщает, достигает ли маржа минимального порога.
func (p PricePolicy) IsProfitable(minMarginRate float64) bool {
	return p.MarginRate >= minMarginRate
}

// ItemOption — вариант товара (цвет, размер и т.п.).
type ItemOption struct {
	Name            string
	Value           string
	PriceAdjustment int64
	StockQuantity   int
}

// AdjustedPrice возвращает цену варианта относительно базовой.
func (o ItemOption) AdjustedPrice(base int64) int64 {
	return base + o.PriceAdjustment
}

// Item — каноническое представление товара, не зависящее от форматов поставщиков и маркетплейсов.
type Item struct {
	ID                    string
	Title                 string
	Brand                 string
	Price                 PricePolicy
	Options               []ItemOption
	Images                []string
	CategoryID            string
	SupplierID            string
	Description           *string
	Manufacturer          *string
	Model                 *string
	EstimatedShippingDays int
	StockQuantity         int
	MaxStockQuantity      *int
	IsActive              bool
	NormalizedAt          time.Time
	LastSyncedAt          *time.Time
	HashKey               string
}

// NewItem создаёт активный товар и вычисляет его хэш.
func NewItem(id, title, brand string, price PricePolicy, options []ItemOption, images []string,
	categoryID, supplierID string, normalizedAt time.Time) *Item {
	item := &Item{
		ID:                    id,
		Title:                 title,
		Brand:                 brand,
		Price:                 price,
		Options:               options,
		Images:                images,
		CategoryID:            categoryID,
		SupplierID:            supplierID,
		EstimatedShippingDays: DefaultShippingDays,
		IsActive:              true,
		NormalizedAt:          normalizedAt,
	}
	item.Rehash()

	return item
}

// hashContent — набор полей, определяющих идентичность товара в каталоге.
type hashContent struct {
	Brand    string   `json:"brand"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
	Price    int64    `json:"price"`
	Supplier string   `json:"supplier"`
	Title    string   `json:"title"`
}

// ComputeHash возвращает детерминированный дайджест по названию, бренду, исходной цене,
// отсортированным парам опций name:value, категории и поставщику.
func (i *Item) ComputeHash() string {
	options := make([]string, 0, len(i.Options))
	for _, opt := range i.Options {
		options = append(options, fmt.Sprintf("%s:%s", opt.Name, opt.Value))
	}
	sort.Strings(options)

	data, _ := json.Marshal(hashContent{
		Brand:    i.Brand,
		Category: i.CategoryID,
		Options:  options,
		Price:    i.Price.OriginalPrice,
		Supplier: i.SupplierID,
		Title:    i.Title,
	})

	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Rehash пересчитывает HashKey. Вызывается после любого изменения хэшируемых полей.
func (i *Item) Rehash() {
	i.HashKey = i.ComputeHash()
}

// IsAvailable сообщает, можно ли продавать товар.
func (i *Item) IsAvailable(minMarginRate float64) bool {
	return i.IsActive &&
		i.StockQuantity > 0 &&
		len(i.Images) > 0 &&
		i.Price.IsProfitable(minMarginRate)
}

// DisplayPrice возвращает минимальную цену среди вариантов или итоговую цену, если вариантов нет.
func (i *Item) DisplayPrice() int64 {
	base := i.Price.FinalPrice()
	if len(i.Options) == 0 {
		return base
	}

	lowest := i.Options[0].AdjustedPrice(base)
	for _, opt := range i.Options[1:] {
		if p := opt.AdjustedPrice(base); p < lowest {
			lowest = p
		}
	}

	return lowest
}

func (i *Item) OptionByName(name string) *ItemOption {
	for idx := range i.Options {
		if i.Options[idx].Name == name {
			return &i.Options[idx]
		}
	}

	return nil
}

func (i *Item) OptionByNameAndValue(name, value string) *ItemOption {
	for idx := range i.Options {
		if i.Options[idx].Name == name && i.Options[idx].Value == value {
			return &i.Options[idx]
		}
	}

	return nil
}

// HasOptionCombination проверяет, что ни одна опция товара не противоречит запрошенной комбинации.
func (i *Item) HasOptionCombination(values map[string]string) bool {
	for _, opt := range i.Options {
		if v, ok := values[opt.Name]; ok && v != opt.Value {
			return false
		}
	}

	return true
}

// CanFulfill проверяет наличие достаточного остатка, в том числе по выбранным вариантам.
func (i *Item) CanFulfill(quantity int, optionValues map[string]string, minMarginRate float64) bool {
	if !i.IsAvailable(minMarginRate) {
		return false
	}

	for name, value := range optionValues {
		if opt := i.OptionByNameAndValue(name, value); opt != nil && opt.StockQuantity < quantity {
			return false
		}
	}

	return i.StockQuantity >= quantity
}

// UpdateStock изменяет остаток на delta, не опускаясь ниже нуля.
func (i *Item) UpdateStock(delta int) {
	i.StockQuantity = max(0, i.StockQuantity+delta)
}

// UpdatePrice меняет исходную цену (и маржу, если передана) и пересчитывает хэш.
func (i *Item) UpdatePrice(price int64, marginRate *float64) {
	i.Price.OriginalPrice = price
	if marginRate != nil {
		i.Price.MarginRate = *marginRate
	}
	i.Rehash()
}

// Deactivate мягко снимает товар с продажи. Конвейер никогда не удаляет товары физически.
func (i *Item) Deactivate() {
	i.IsActive = false
}

// MarkSynced фиксирует время последней успешной выгрузки на маркетплейс.
func (i *Item) MarkSynced(at time.Time) {
	i.LastSyncedAt = &at
}
