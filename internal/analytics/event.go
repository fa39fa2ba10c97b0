package analytics

import (
	"time"

	"github.com/serroba/linkgate/internal/resolution"
)

// TopicLinkClicked is the topic click events are published on.
const TopicLinkClicked = "link.clicked"

// ClickEvent represents a successful short link resolution.
type ClickEvent struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	TargetURL       string    `json:"targetUrl"`
	ClickedAt       time.Time `json:"clickedAt"`
	Referer         string    `json:"referer,omitempty"`
	IP              string    `json:"ip,omitempty"`
	City            string    `json:"city,omitempty"`
	Region          string    `json:"region,omitempty"`
	Country         string    `json:"country,omitempty"`
	Latitude        string    `json:"latitude,omitempty"`
	Longitude       string    `json:"longitude,omitempty"`
	Language        string    `json:"language,omitempty"`
	DeviceModel     string    `json:"deviceModel,omitempty"`
	BrowserName     string    `json:"browserName,omitempty"`
	EngineName      string    `json:"engineName,omitempty"`
	OSName          string    `json:"osName,omitempty"`
	CPUArchitecture string    `json:"cpuArchitecture,omitempty"`
	IsBot           bool      `json:"isBot,omitempty"`
}

// NewClickEvent copies the visit context of req into a click event.
// The password is never carried over.
func NewClickEvent(id string, req *resolution.Request, targetURL string, clickedAt time.Time) *ClickEvent {
	return &ClickEvent{
		ID:              id,
		Slug:            req.Slug,
		TargetURL:       targetURL,
		ClickedAt:       clickedAt,
		Referer:         req.Referer,
		IP:              req.IP,
		City:            req.City,
		Region:          req.Region,
		Country:         req.Country,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		Language:        req.Language,
		DeviceModel:     req.DeviceModel,
		BrowserName:     req.BrowserName,
		EngineName:      req.EngineName,
		OSName:          req.OSName,
		CPUArchitecture: req.CPUArchitecture,
		IsBot:           req.IsBot,
	}
}
