// Package catalog loads the static product list and filters it.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrLoad wraps every failure to obtain or decode the products document.
var ErrLoad = errors.New("catalog load failed")

// Catalog is an immutable, ordered product list.
type Catalog struct {
	products []Product
	byID     map[int]int
}

// New builds a Catalog from products in document order. When ids repeat,
// Find resolves to the first occurrence.
func New(products []Product) *Catalog {
	c := &Catalog{
		products: products,
		byID:     make(map[int]int, len(products)),
	}
	for i, p := range products {
		if _, dup := c.byID[p.ID]; !dup {
			c.byID[p.ID] = i
		}
	}
	return c
}

// Load fetches the products document from an http(s) URL or reads it from
// a file path.
func Load(ctx context.Context, source string) (*Catalog, error) {
	var (
		r   io.ReadCloser
		err error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		r, err = fetch(ctx, source)
	} else {
		r, err = os.Open(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer r.Close()

	return Decode(r)
}

// Decode parses a `{ "products": [...] }` document.
func Decode(r io.Reader) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding products: %v", ErrLoad, err)
	}
	return New(doc.Products), nil
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}

// All returns the products in document order.
func (c *Catalog) All() []Product {
	if c == nil {
		return nil
	}
	return c.products
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}

// Find looks a product up by id.
func (c *Catalog) Find(id int) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Categories returns the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range c.All() {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
