package models

import "time"

type Contributor struct {
	ID          int       `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"-"` // stored plaintext per explicit product requirement
	DisplayName string    `json:"display_name"`
	Active      bool      `json:"active"`
	SeenGuide   bool      `json:"seen_guide"`
	CreatedAt   time.Time `json:"created_at"`
}
