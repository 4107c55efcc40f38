package models

type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Location is a street block seen during a single beat query. Its identity
// is Block; the coordinates are those of the first record that named it.
type Location struct {
	Block           string
	Latitude        float64
	Longitude       float64
	Crimes          []CrimeEvent
	ServiceRequests int     // open 311 requests matched to this block
	Probability     float64 // set by the probability calculator
}

// Locations indexes locations by block string.
type Locations map[string]*Location

func NewLocation(block string, c Coordinates) *Location {
	return &Location{
		Block:     block,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
	}
}

func (l *Location) AddCrime(c CrimeEvent) {
	l.Crimes = append(l.Crimes, c)
}
