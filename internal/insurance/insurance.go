// Package insurance defines the customer and weather alert records the
// notification pipeline consumes. Records are read-only inputs produced by
// the data source; the zipcode is the sole join key between customers and
// alerts.
package insurance

// CustomerPolicy is a customer row joined from the party table. Identity for
// a run is (name, zipcode, policy type).
type CustomerPolicy struct {
	Name       string `json:"name"`
	PolicyType string `json:"policy_type"`
	Zipcode    string `json:"zipcode"`
	Email      string `json:"email"`
}

// WeatherAlert is an active severe weather alert for a zipcode. Start and End
// are epoch seconds as reported by the alert feed.
type WeatherAlert struct {
	Event       string `json:"event"`
	Description string `json:"description"`
	SenderName  string `json:"sender_name"`
	Start       int64  `json:"start"`
	End         int64  `json:"end"`
	Zipcode     string `json:"zipcode"`
}

// JoinedRecord pairs a customer with at most one active alert for their
// zipcode. Alert is nil when no alert is active; it is never a blank struct.
type JoinedRecord struct {
	Customer CustomerPolicy
	Alert    *WeatherAlert
}
