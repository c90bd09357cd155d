package client

import (
	"fmt"
	"strings"
)

const maxMessageLen = 4000

func validateCredentials(creds Credentials) error {
	if strings.TrimSpace(creds.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if creds.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func validateRegistration(req RegisterRequest) error {
	if strings.TrimSpace(req.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("email is malformed")
	}
	if strings.TrimSpace(req.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if req.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func validateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		return fmt.Errorf("message exceeds %d characters", maxMessageLen)
	}
	return nil
}

func validateGroupQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}
	return nil
}
