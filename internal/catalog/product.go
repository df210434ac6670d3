package catalog

import (
	"strconv"
	"strings"

	"github.com/angelmondragon/refabry-storefront/pkg/shopapi"
	"github.com/shopspring/decimal"
)

type (
	Category     = shopapi.Category
	ProductImage = shopapi.ProductImage
)

// Product is a catalog entry as held by the store.
type Product struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Image          string          `json:"image"`
	Stock          int             `json:"stock"`
	IsDiscount     bool            `json:"is_discount"`
	DiscountAmount *string         `json:"discount_amount"`
	ShortDesc      *string         `json:"short_desc"`
	Category       *Category       `json:"category"`
	Code           *string         `json:"code"`
	UniqueID       *string         `json:"unique_id"`
	ProductImages  []ProductImage  `json:"product_images"`
}

func productFromWire(w shopapi.Product) Product {
	p := Product{
		ID:            w.ID,
		Name:          w.Name,
		Price:         w.Price,
		Image:         w.Image,
		Stock:         w.Stock,
		IsDiscount:    bool(w.IsDiscount),
		ShortDesc:     w.ShortDesc,
		Category:      w.Category,
		Code:          w.Code,
		UniqueID:      w.UniqueID,
		ProductImages: append([]ProductImage{}, w.ProductImages...),
	}
	if w.DiscountAmount != nil {
		amount := string(*w.DiscountAmount)
		p.DiscountAmount = &amount
	}
	return p
}

func productsFromWire(wire []shopapi.Product) []Product {
	out := make([]Product, 0, len(wire))
	for _, w := range wire {
		out = append(out, productFromWire(w))
	}
	return out
}

// discount returns the whole-unit discount amount when the product is discounted.
// The amount is read like a leading integer ("50.9" is 50); unparseable text counts as none.
func (p Product) discount() (decimal.Decimal, bool) {
	if !p.IsDiscount || p.DiscountAmount == nil || strings.TrimSpace(*p.DiscountAmount) == "" {
		return decimal.Zero, false
	}
	n, ok := leadingInt(*p.DiscountAmount)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(n), true
}

// DiscountPercentage is round(discount / price × 100). A zero price is treated as 1.
// Products without a non-zero discount report 0.
func (p Product) DiscountPercentage() int64 {
	amount, ok := p.discount()
	if !ok || amount.IsZero() {
		return 0
	}
	price := p.Price
	if price.IsZero() {
		price = decimal.NewFromInt(1)
	}
	pct := amount.Div(price).Mul(decimal.NewFromInt(100))
	return pct.Add(decimal.NewFromFloat(0.5)).Floor().IntPart()
}

// OriginalPrice is the pre-discount price shown struck through next to Price.
func (p Product) OriginalPrice() decimal.Decimal {
	amount, ok := p.discount()
	if !ok {
		return p.Price
	}
	return p.Price.Add(amount)
}

// ImageURL resolves Image against base unless it is already absolute.
func (p Product) ImageURL(base string) string {
	return resolveImage(base, p.Image)
}

func resolveImage(base, image string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(image, "/")
}

func leadingInt(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ProductDTO is the product payload returned to clients, with presentation values resolved.
type ProductDTO struct {
	Product
	ImageURL           string          `json:"image_url"`
	GalleryURLs        []string        `json:"gallery_urls"`
	DiscountPercentage int64           `json:"discount_percentage"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	InStock            bool            `json:"in_stock"`
}

// NewProductDTO builds the client payload for p using imageBase for relative image names.
func NewProductDTO(p Product, imageBase string) ProductDTO {
	gallery := make([]string, 0, len(p.ProductImages))
	for _, img := range p.ProductImages {
		gallery = append(gallery, resolveImage(imageBase, img.Name))
	}
	return ProductDTO{
		Product:            p,
		ImageURL:           p.ImageURL(imageBase),
		GalleryURLs:        gallery,
		DiscountPercentage: p.DiscountPercentage(),
		OriginalPrice:      p.OriginalPrice(),
		InStock:            p.Stock > 0,
	}
}

// NewProductDTOs maps a listing.
func NewProductDTOs(products []Product, imageBase string) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, NewProductDTO(p, imageBase))
	}
	return out
}
