// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"
	"net/url"
)

// Public catalog reads go through PublicGet and the response cache.

// ApprovedProducts lists products visible in the shop.
func (c *Client) ApprovedProducts(ctx context.Context, page PageRequest) (*Page[Product], error) {
	var result Page[Product]
	if err := c.PublicGet(ctx, withQuery("/products/approved", page.query()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchProducts runs a keyword search over approved products.
func (c *Client) SearchProducts(ctx context.Context, keyword string, page PageRequest) (*Page[Product], error) {
	query := page.query()
	query.Set("keyword", keyword)
	var result Page[Product]
	if err := c.PublicGet(ctx, withQuery("/products/search", query), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProductsByCategory lists approved products in a category by name.
func (c *Client) ProductsByCategory(ctx context.Context, categoryName string, page PageRequest) (*Page[Product], error) {
	var result Page[Product]
	path := withQuery("/products/approved/category/"+url.PathEscape(categoryName), page.query())
	if err := c.PublicGet(ctx, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.PublicGet(ctx, "/products/"+url.PathEscape(id), &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct lists a product for sale. New products await approval.
func (c *Client) CreateProduct(ctx context.Context, product CreateProductRequest) (*Product, error) {
	var created Product
	if err := c.Do(ctx, http.MethodPost, "/products", product, &created); err != nil {
		return nil, err
	}
	c.InvalidateCache()
	return &created, nil
}

// ModerateProduct approves or rejects a product (admin).
func (c *Client) ModerateProduct(ctx context.Context, id string, approve bool, reason string) error {
	action := "reject"
	if approve {
		action = "approve"
	}
	err := c.Do(ctx, http.MethodPut, "/products/"+url.PathEscape(id)+"/"+action, map[string]string{"reason": reason}, nil)
	if err == nil {
		c.InvalidateCache()
	}
	return err
}

// Categories lists public categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.PublicGet(ctx, "/categories/public", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// PublicOrphanages lists approved orphanages for donors.
func (c *Client) PublicOrphanages(ctx context.Context, page PageRequest) (*Page[Orphanage], error) {
	var result Page[Orphanage]
	if err := c.PublicGet(ctx, withQuery("/orphanages/public", page.query()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AllOrphanages lists every orphanage including pending ones (admin).
func (c *Client) AllOrphanages(ctx context.Context, page PageRequest) (*Page[Orphanage], error) {
	var result Page[Orphanage]
	if err := c.Do(ctx, http.MethodGet, withQuery("/orphanages", page.query()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrphanage fetches one orphanage profile.
func (c *Client) GetOrphanage(ctx context.Context, id string) (*Orphanage, error) {
	var orphanage Orphanage
	if err := c.Do(ctx, http.MethodGet, "/orphanages/"+url.PathEscape(id), nil, &orphanage); err != nil {
		return nil, err
	}
	return &orphanage, nil
}

// ModerateOrphanage approves or rejects a pending orphanage (admin).
func (c *Client) ModerateOrphanage(ctx context.Context, id string, approve bool) error {
	action := "reject"
	if approve {
		action = "approve"
	}
	err := c.Do(ctx, http.MethodPost, "/orphanages/"+url.PathEscape(id)+"/"+action, nil, nil)
	if err == nil {
		c.InvalidateCache()
	}
	return err
}
