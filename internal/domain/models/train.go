package models

// Train mirrors the trains table. AvailableSeats stays within [0, TotalSeats].
type Train struct {
	ID             int64   `json:"train_id"`
	Name           string  `json:"train_name"`
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalTime    string  `json:"arrival_time"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
	Fare           float64 `json:"fare"`
}

// Route renders "source -> destination".
func (t Train) Route() string {
	return t.Source + " -> " + t.Destination
}
