// internal/workers/bgv/review-bgv-document/config.go
package reviewbgvdocument

import "time"

type Config struct {
	Timeout time.Duration
	// RequireStaffReviewer rejects reviews from profiles that are not admin or super-admin.
	RequireStaffReviewer bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:              10 * time.Second,
		RequireStaffReviewer: true,
	}
}
