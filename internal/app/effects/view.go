// Package effects renders the overlays driven by remote commands: a
// cursor marker and a confetti burst.
package effects

// View is the overlay snapshot served to local clients.
type View struct {
	Connected bool          `json:"connected"`
	Cursor    Cursor        `json:"cursor"`
	Confetti  ConfettiState `json:"confetti"`
}
