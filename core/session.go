package core

// Session identifies the authenticated actor for the duration of one request.
// It is extracted from the JWT claims by the API layer and passed explicitly
// into every service call; there is no ambient current-user global.
type Session struct {
	UserID   string `json:"user_id"`
	SchoolID string `json:"school_id"`
}

func (s Session) IsZero() bool {
	return s.UserID == "" && s.SchoolID == ""
}
