package domain

import "slices"

// Product is the namespace a consuming application scopes resources under.
type Product string

// Known products.
const (
	ProductEcomm Product = "ecomm"
	ProductAdmin Product = "admin"
	ProductCRM   Product = "crm"
)

// Products lists every known product.
var Products = []Product{ProductEcomm, ProductAdmin, ProductCRM}

// Valid reports whether p is a known product.
func (p Product) Valid() bool {
	return slices.Contains(Products, p)
}

// ResourcesCollection is the backend collection holding p's resources.
func (p Product) ResourcesCollection() string {
	return string(p) + "_resources"
}

// TagsCollection is the backend collection holding p's tags.
func (p Product) TagsCollection() string {
	return string(p) + "_tags"
}
