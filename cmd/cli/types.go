package main

import (
	"github.com/google/uuid"
	"github.com/hairizuanbinnoorazman/design-testgen/scriptgen"
)

// PaginatedResponse mirrors the server's paginated list response.
type PaginatedResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse mirrors the server's error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse mirrors the server's success response.
type SuccessResponse struct {
	Message string `json:"message"`
}

// GenerateResponse mirrors the body returned by POST /api/v1/generate.
type GenerateResponse struct {
	ID        uuid.UUID           `json:"id"`
	Framework scriptgen.Framework `json:"framework"`
	BaseURL   string              `json:"base_url,omitempty"`
	Script    string              `json:"script"`
	Filename  string              `json:"filename"`
	Files     []string            `json:"files"`
	Warning   string              `json:"warning,omitempty"`
	Sections  struct {
		Locators   string `json:"locators"`
		Actions    string `json:"actions"`
		TestScript string `json:"test_script"`
	} `json:"sections"`
}
