package usecase

import (
	"regexp"
	"strings"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultUnbrandedName — бренд для товаров без бренда.
	DefaultUnbrandedName = "기타"
	// DefaultCostRatio — доля исходной цены, принимаемая за себестоимость при пересчёте маржи.
	DefaultCostRatio = 0.7
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// разрешены буквы, цифры, _, пробелы, хангыль и ()[]/-+.
	disallowedTitleRe = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Hangul}()\[\]/\-+.]`)
)

// categoryKeywords — категория и ключевые слова для неё. Порядок важен: побеждает первое совпадение.
type categoryKeywords struct {
	category string
	keywords []string
}

var defaultCategoryKeywords = []categoryKeywords{
	{category: "의류", keywords: []string{"의류", "옷", "셔츠", "바지", "드레스", "상의", "하의"}},
	{category: "전자제품", keywords: []string{"전자", "휴대폰", "컴퓨터", "노트북", "태블릿"}},
	{category: "가구", keywords: []string{"가구", "소파", "침대", "책상", "의자"}},
	{category: "도서", keywords: []string{"도서", "책", "서적", "만화", "잡지"}},
}

var defaultBrandAliases = map[string]string{
	"SAMSUNG": "삼성전자",
	"LG":      "LG전자",
	"APPLE":   "애플",
	"SONY":    "소니",
}

// NormalizationRules — набор правил очистки канонических товаров.
type NormalizationRules struct {
	minMarginRate float64
	costRatio     float64
	brandAliases  map[string]string
	categories    []categoryKeywords
	upper         cases.Caser
	lower         cases.Caser
}

func NewNormalizationRules(minMarginRate float64) *NormalizationRules {
	if minMarginRate <= 0 {
		minMarginRate = domain.DefaultMinMarginRate
	}

	return &NormalizationRules{
		minMarginRate: minMarginRate,
		costRatio:     DefaultCostRatio,
		brandAliases:  defaultBrandAliases,
		categories:    defaultCategoryKeywords,
		upper:         cases.Upper(language.Und),
		lower:         cases.Lower(language.Und),
	}
}

// NormalizeTitle схлопывает пробелы и удаляет символы вне разрешённого набора.
func (r *NormalizationRules) NormalizeTitle(title string) string {
	title = norm.NFC.String(title)
	title = whitespaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
	title = disallowedTitleRe.ReplaceAllString(title, "")

	// после удаления символов могли остаться двойные пробелы
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
}

// NormalizeBrand приводит бренд к верхнему регистру и заменяет известные псевдонимы.
// Незнакомый бренд возвращается в верхнем регистре без изменений.
func (r *NormalizationRules) NormalizeBrand(brand string) string {
	brand = strings.TrimSpace(norm.NFC.String(brand))
	if brand == "" {
		return DefaultUnbrandedName
	}

	brand = r.upper.String(brand)
	if alias, ok := r.brandAliases[brand]; ok {
		return alias
	}

	return brand
}

// ExtractCategory определяет категорию по ключевым словам в названии.
func (r *NormalizationRules) ExtractCategory(title string) string {
	lowered := r.lower.String(title)

	for _, c := range r.categories {
		for _, kw := range c.keywords {
			if strings.Contains(lowered, kw) {
				return c.category
			}
		}
	}

	return domain.DefaultCategory
}

// EstimateMarginRate оценивает маржу, принимая себестоимость за costRatio от исходной цены.
func (r *NormalizationRules) EstimateMarginRate(originalPrice int64) float64 {
	cost := decimal.NewFromInt(originalPrice).Mul(decimal.NewFromFloat(r.costRatio)).IntPart()
	if cost <= 0 {
		return domain.DefaultMarginRate
	}

	return decimal.NewFromInt(originalPrice - cost).
		Div(decimal.NewFromInt(cost)).
		InexactFloat64()
}

// Apply возвращает нормализованную копию товара с пересчитанным хэшем. Исходный товар не изменяется.
func (r *NormalizationRules) Apply(item *domain.Item) *domain.Item {
	n := *item
	n.Options = append([]domain.ItemOption(nil), item.Options...)
	n.Images = append([]string(nil), item.Images...)

	n.Title = r.NormalizeTitle(item.Title)
	n.Brand = r.NormalizeBrand(item.Brand)

	if item.CategoryID == "" || item.CategoryID == domain.DefaultCategory {
		n.CategoryID = r.ExtractCategory(n.Title)
	}

	if item.Price.MarginRate < r.minMarginRate {
		n.Price.MarginRate = r.EstimateMarginRate(item.Price.OriginalPrice)
	}

	n.Rehash()
	return &n
}
