package config

// GetAuthSkipperPaths returns /api paths that skip admin authentication.
func GetAuthSkipperPaths() []string {
	return []string{"/api/health"}
}

// AuthType selects the admin auth middleware: basic or key.
func AuthType() string {
	return v.GetString("AUTH_TYPE")
}

// AdminCredentials returns API_USER, API_PASS and API_KEY.
func AdminCredentials() (user, pass, key string) {
	return v.GetString("API_USER"), v.GetString("API_PASS"), v.GetString("API_KEY")
}
