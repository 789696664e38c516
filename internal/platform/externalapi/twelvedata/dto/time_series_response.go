// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
// Prices arrive as strings. Index symbols usually omit volume.
type TimeSeriesResponse struct {
	Status   string `json:"status"`
	Code     int    `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
	Meta     Meta   `json:"meta"`
	Values   []Bar  `json:"values"`
}

type Meta struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Exchange string `json:"exchange,omitempty"`
}

type Bar struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
	Volume   string `json:"volume,omitempty"`
}
