package models

import "time"

// GeoPosition is the last known position reported for a vehicle.
type GeoPosition struct {
	Lat       float64   `json:"lat" bson:"lat"`
	Lng       float64   `json:"lng" bson:"lng"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Address is a trip endpoint.
type Address struct {
	CompanyName string   `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Address     string   `json:"address" bson:"address"`
	City        string   `json:"city" bson:"city"`
	Province    string   `json:"province" bson:"province"` // two-letter code
	PostalCode  string   `json:"postalCode" bson:"postalCode"`
	Country     string   `json:"country" bson:"country"`
	Lat         *float64 `json:"lat,omitempty" bson:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty" bson:"lng,omitempty"`
}
