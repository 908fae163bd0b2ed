package model

import (
	"fmt"
	"strings"
)

// Permission is the tri-state platform notification permission.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ParsePermission validates a permission value.
func ParsePermission(s string) (Permission, error) {
	switch p := Permission(strings.ToLower(strings.TrimSpace(s))); p {
	case PermissionDefault, PermissionGranted, PermissionDenied:
		return p, nil
	default:
		return "", fmt.Errorf("unknown permission %q", s)
	}
}

// User is the single-field user record of the mock login.
type User struct {
	Name string `json:"name"`
}

// IsImageType reports whether a MIME type denotes an image.
func IsImageType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}
