package gcal

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// OAuthScopes request calendar access only.
var OAuthScopes = []string{
	calendar.CalendarScope,
}

// LoadOAuthConfig loads the OAuth2 client secret from the environment or a
// credentials file and points it at redirectURL.
func LoadOAuthConfig(credentialsFile, redirectURL string) (*oauth2.Config, error) {
	// Environment variable first, useful for container deployments.
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON"); credJSON != "" {
		config, err := google.ConfigFromJSON([]byte(credJSON), OAuthScopes...)
		if err == nil {
			config.RedirectURL = redirectURL
			return config, nil
		}
	}

	if credentialsFile != "" {
		if config, err := loadConfigFromFile(credentialsFile, redirectURL); err == nil {
			return config, nil
		}
	}

	if config, err := loadConfigFromFile("./credentials.json", redirectURL); err == nil {
		return config, nil
	}

	return nil, fmt.Errorf("no credentials file found - please provide credentials.json or set GOOGLE_CREDENTIALS_JSON")
}

// loadConfigFromFile attempts to load OAuth config from a file
func loadConfigFromFile(path, redirectURL string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(data, OAuthScopes...)
	if err != nil {
		return nil, err
	}

	config.RedirectURL = redirectURL
	return config, nil
}
