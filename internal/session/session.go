package session

// Storage keys shared by every tier. The same two entries are
// mirrored into the cookie jar, the in-process store and the
// persistent store.
const (
	KeyAuthToken = "authToken"
	KeyUser      = "user"
)

// User is the profile payload issued by the backend alongside a
// token, mirrored as JSON into every tier.
type User struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	PhotoURL  string `json:"photoURL,omitempty"`
}

// Session is the logical authentication fact for this client:
// a backend-issued bearer token plus the user it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
