package handlers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/learnsphere/client/internal/models"
)

const minPasswordLength = 6

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@([\w-]+\.)+[\w-]{2,4}$`)
	phonePattern = regexp.MustCompile(`^\d{10}$`)
)

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// validatePhone accepts an empty phone; a given phone must be exactly 10 digits
func validatePhone(phone string) error {
	if phone != "" && !phonePattern.MatchString(phone) {
		return fmt.Errorf("phone number must be 10 digits")
	}
	return nil
}

func validateLogin(req *models.LoginRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		return fmt.Errorf("username is required")
	}
	return validatePassword(req.Password)
}

func validateRegistration(req *models.RegisterRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Name == "" {
		return fmt.Errorf("username and name are required")
	}
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if err := validatePassword(req.Password); err != nil {
		return err
	}
	if err := validatePhone(req.Phone); err != nil {
		return err
	}

	role, err := parseRole(string(req.Role))
	if err != nil {
		return err
	}
	req.Role = role
	return nil
}

// parseRole defaults an empty role to student
func parseRole(raw string) (models.Role, error) {
	switch models.Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", models.RoleStudent:
		return models.RoleStudent, nil
	case models.RoleTeacher:
		return models.RoleTeacher, nil
	}
	return "", fmt.Errorf("invalid role: %s", raw)
}

var errInvalidFlow = fmt.Errorf("flow must be login or signup")

var (
	errMissingVideo  = fmt.Errorf("video file is required")
	errMalformedForm = fmt.Errorf("failed to parse request")
)
