package forecast

// Condition is the primary weather condition record of an hourly entry.
type Condition struct {
	// Main is the category label, e.g. "Rain", "Clear", "Clouds".
	Main string `json:"main"`
	// Description is the human-readable variant, e.g. "light rain".
	Description string `json:"description"`
	// Icon is the provider's icon identifier, e.g. "10d".
	Icon string `json:"icon"`
}

// HourlyEntry is one forecast record for an upcoming clock hour.
// Only the first element of Weather is ever consulted.
type HourlyEntry struct {
	Dt      int64       `json:"dt"`
	Weather []Condition `json:"weather"`
}

// primary returns the entry's leading condition, or false if the provider
// sent an empty weather array.
func (e HourlyEntry) primary() (Condition, bool) {
	if len(e.Weather) == 0 {
		return Condition{}, false
	}
	return e.Weather[0], true
}
