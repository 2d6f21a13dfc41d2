package models

// Party carries the resources shared by every character in a save.
type Party struct {
	Energy    int `json:"energy"`
	MaxEnergy int `json:"max_energy"`
}
