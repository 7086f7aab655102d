package domain

// User is the buyer identity reported by the chat platform.
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"name"`
	UserName string `json:"username"`
}
