package domain

// DeviceToken is the latest push registry token of a user. One per user.
type DeviceToken struct {
	UID   string
	Token string
}
