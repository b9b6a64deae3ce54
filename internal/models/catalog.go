package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Price is a monetary amount in minor units (centavos).
// On the wire the backend sends decimals such as "15000.00".
type Price int64

// ParsePrice parses a decimal string with at most two fractional digits.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("models: empty price")
	}

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, fmt.Errorf("models: price %q has more than two decimals", s)
	}
	frac += strings.Repeat("0", 2-len(frac))

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("models: invalid price %q: %w", s, err)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("models: invalid price %q: %w", s, err)
	}

	p := Price(w*100 + f)
	if neg {
		p = -p
	}
	return p, nil
}

// String renders the price as a two-decimal string.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the price the way the backend expects it.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts both decimal strings and JSON numbers.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}

	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}

	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Product is a catalog entry as served by the backend.
type Product struct {
	ID           int64      `json:"id"`
	Name         string     `json:"nombre"`
	Description  string     `json:"descripcion"`
	Price        Price      `json:"precio"`
	CategoryID   int64      `json:"categoria"`
	CategoryName string     `json:"categoria_nombre,omitempty"`
	ImageURL     string     `json:"imagen,omitempty"`
	Available    bool       `json:"disponible"`
	Stock        int        `json:"stock"`
	Rating       float64    `json:"calificacion"`
	CreatedAt    *time.Time `json:"fecha_creacion,omitempty"`
	UpdatedAt    *time.Time `json:"fecha_actualizacion,omitempty"`
}

// ProductInput is the writable subset of a product used by the admin console.
type ProductInput struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Price       Price  `json:"precio"`
	CategoryID  int64  `json:"categoria"`
	ImageURL    string `json:"imagen,omitempty"`
	Available   bool   `json:"disponible"`
	Stock       int    `json:"stock"`
}

// Category groups products in the catalog.
type Category struct {
	ID            int64      `json:"id"`
	Name          string     `json:"nombre"`
	Icon          string     `json:"icono,omitempty"`
	Description   string     `json:"descripcion,omitempty"`
	Active        bool       `json:"activa"`
	ProductsCount int        `json:"productos_count"`
	CreatedAt     *time.Time `json:"fecha_creacion,omitempty"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Count      int       `json:"count"`
	Next       string    `json:"next,omitempty"`
	Previous   string    `json:"previous,omitempty"`
	Results    []Product `json:"results"`
	TotalPages int       `json:"total_pages"`
}

// CategoryPage is the paginated envelope of the category listing.
type CategoryPage struct {
	Count   int        `json:"count"`
	Results []Category `json:"results"`
}
