// Package catalog defines the product catalog domain: entities, the
// repository ports the cache layer reads through, the response shapes that
// get cached, and the error taxonomy shared by every layer.
package catalog
