package model

import "time"

/*

LinkedInToken is the stored OAuth credential for one user's LinkedIn account

Written by the OAuth callback, refreshed on reconnect, deleted on sign-out or
whenever LinkedIn reports the token invalid (401). One row per user.

*/
type LinkedInToken struct {
	UserId         string `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AccessToken    string
	ExpiresAt      time.Time
	LinkedInUserId string
}
