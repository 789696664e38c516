// Package dto defines data transfer objects for the indexlist HTTP API.
package dto

// IndexItem represents an index in the API response.
type IndexItem struct {
	Name string `json:"name"`
}
