// Package ebay implements the marketplace port over the eBay Browse
// API, with client-credentials OAuth against the eBay identity service.
package ebay
