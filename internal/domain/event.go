package domain

import "time"

// Earthquake is a single stored event record from the USGS feed.
// Magnitude and DepthKm are pointers because the feed may omit them.
type Earthquake struct {
	ID        int64     `json:"id" db:"id"`
	USGSID    string    `json:"usgs_id" db:"usgs_id"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Magnitude *float64  `json:"magnitude" db:"magnitude"`
	DepthKm   *float64  `json:"depth" db:"depth_km"`
	Region    string    `json:"region" db:"region"`
	Time      time.Time `json:"timestamp" db:"event_time"`
	CreatedAt time.Time `json:"created_at,omitzero" db:"created_at"`
}

// HasValidCoordinates reports whether the event's coordinates fall inside
// the WGS-84 range. Events failing this are skipped during assessment.
func (e Earthquake) HasValidCoordinates() bool {
	return e.Latitude >= -90 && e.Latitude <= 90 &&
		e.Longitude >= -180 && e.Longitude <= 180
}

// Statistics is the magnitude-distribution summary served by the read API.
// Recent counts events from the trailing 7 days; major/moderate/minor split
// at magnitudes 6.0 and 4.0.
type Statistics struct {
	Total            int     `json:"total_earthquakes" db:"total"`
	Recent           int     `json:"recent_earthquakes" db:"recent"`
	Major            int     `json:"major_earthquakes" db:"major"`
	Moderate         int     `json:"moderate_earthquakes" db:"moderate"`
	Minor            int     `json:"minor_earthquakes" db:"minor"`
	AverageMagnitude float64 `json:"average_magnitude" db:"average_magnitude"`
}

// RiskZone summarizes aggregate earthquake risk for one grid cell. Zones
// are a derived snapshot: the whole set is regenerated on every assessment
// run and never updated in place.
type RiskZone struct {
	ID              int64     `json:"id" db:"id"`
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	RiskLevel       float64   `json:"risk_level" db:"risk_level"`
	RegionName      string    `json:"region_name" db:"region_name"`
	EarthquakeCount int       `json:"earthquake_count" db:"earthquake_count"`
	LastUpdated     time.Time `json:"last_updated" db:"last_updated"`
}
