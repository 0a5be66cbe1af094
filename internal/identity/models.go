package identity

import "time"

type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile is a user with the follow counts derived on read.
type Profile struct {
	User
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
}

// Summary is the short form used in follower and following lists.
type Summary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ProfileUpdate struct {
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePicture *string `json:"profile_picture" validate:"omitempty,max=2048"`
}
