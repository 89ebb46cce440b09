package domain

// View is a screen of the client.
type View string

const (
	ViewLogin View = "login"
	ViewChat  View = "chat"
)

// Permission is the answer to a notification permission request.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
	PermissionDefault Permission = "default"
)
