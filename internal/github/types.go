package github

// Organization represents an organization account on a GitHub Enterprise
// Server instance. Login comparison is case-insensitive everywhere.
type Organization struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type apiError struct {
	Message string `json:"message"`
}
