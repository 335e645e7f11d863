package model

import "github.com/secmon-lab/isogap/pkg/domain/types"

// Page is what a view component produces for the client to display
type Page struct {
	View     types.View `json:"view"`
	Location string     `json:"location,omitempty"`
	Title    string     `json:"title"`
	Data     any        `json:"data"`
}
