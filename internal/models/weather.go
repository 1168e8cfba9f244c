package models

import "time"

// Coordinates is a WGS84 position. Immutable once produced.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherSnapshot is the current-conditions block of one completed forecast fetch.
type WeatherSnapshot struct {
	TemperatureCelsius float64   `json:"temperatureCelsius"`
	WindSpeedKph       float64   `json:"windSpeedKph"`
	FetchedAt          time.Time `json:"fetchedAt"`
}
