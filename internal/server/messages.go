package server

import (
	"dogceo/dashboard/internal/dashboard"
	"dogceo/dashboard/internal/gallery"
)

const (
	msgSelectCategory    = "select_category"
	msgSelectSubCategory = "select_subcategory"
	msgScroll            = "scroll"
	msgImageLoaded       = "image_loaded"
	msgImageError        = "image_error"

	msgRender    = "render"
	msgScrollTop = "scroll_top"
)

// inbound is a message sent by the browser
type inbound struct {
	Type    string            `json:"type"`
	Index   int               `json:"index"`
	Panel   dashboard.PanelID `json:"panel"`
	ID      string            `json:"id"`
	Metrics gallery.Metrics   `json:"metrics"`
}

// outbound is a message pushed to the browser
type outbound struct {
	Type   string              `json:"type"`
	HTML   string              `json:"html,omitempty"`
	Panels []dashboard.PanelID `json:"panels,omitempty"`
}
