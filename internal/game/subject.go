package game

// Subject is the reveal target the honest players hint at. It is picked
// from the catalog exactly once per game and embedded by value into the
// room and every round, so later catalog edits can never change a
// running game.
type Subject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"fullName,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Position    string `json:"position,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
}
