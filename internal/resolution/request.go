package resolution

// Request is the enrichment record sent to the resolver endpoint for one visit.
type Request struct {
	Slug            string `doc:"Short link slug"                 example:"abc123"          json:"slug"                      minLength:"1"`
	Referer         string `doc:"Referer header of the visit"                               json:"referer,omitempty"`
	IP              string `doc:"Resolved client IP, may be empty" example:"203.0.113.5"    json:"ip,omitempty"`
	City            string `doc:"Geolocated city"                                           json:"city,omitempty"`
	Region          string `doc:"Geolocated region"                                         json:"region,omitempty"`
	Country         string `doc:"Geolocated country code"          example:"US"             json:"country,omitempty"`
	Latitude        string `doc:"Geolocated latitude"                                       json:"latitude,omitempty"`
	Longitude       string `doc:"Geolocated longitude"                                      json:"longitude,omitempty"`
	Language        string `doc:"Primary Accept-Language tag"      example:"en-US"          json:"language,omitempty"`
	DeviceModel     string `doc:"Device model"                     example:"iPhone"         json:"deviceModel,omitempty"`
	BrowserName     string `doc:"Browser name"                     example:"Chrome"         json:"browserName,omitempty"`
	EngineName      string `doc:"Rendering engine name"            example:"AppleWebKit"    json:"engineName,omitempty"`
	OSName          string `doc:"Operating system name"            example:"Windows"        json:"osName,omitempty"`
	CPUArchitecture string `doc:"CPU architecture"                 example:"amd64"          json:"cpuArchitecture,omitempty"`
	IsBot           bool   `doc:"Whether the client looks like a bot"                      json:"isBot,omitempty"`
	Password        string `doc:"Password supplied for protected links"                    json:"password,omitempty"`

	// Visitor identifies the client towards the resolver's rate limiter. It
	// travels as X-Forwarded-For, never in the body.
	Visitor string `json:"-"`
}
