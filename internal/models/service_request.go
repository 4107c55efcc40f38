package models

// ServiceRequest is an open 311 request as returned by the Open311 v2 API.
// Only the fields used for block matching are kept.
type ServiceRequest struct {
	ServiceRequestID string  `json:"service_request_id,omitempty"`
	ServiceName      string  `json:"service_name,omitempty"`
	Status           string  `json:"status,omitempty"`
	Address          string  `json:"address,omitempty"`
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"long"`
}

func (r ServiceRequest) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
	}
}
