package validation_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	domainerrors "github.com/WhiskeyCoder/Nextt/internal/errors"
	"github.com/WhiskeyCoder/Nextt/internal/validation"
)

type testRequest struct {
	Provider  string `json:"provider" validate:"required,oneof=plex jellyfin"`
	ServerURL string `json:"server_url" validate:"required,url"`
	SeedLimit int    `json:"seed_limit" validate:"gte=1,lte=100"`
}

func TestValidate_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Provider:  "plex",
		ServerURL: "http://localhost:32400",
		SeedLimit: 10,
	})

	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{SeedLimit: 10})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

	// Details should use JSON field names.
	details, ok := domainErr.Details.(map[string]string)
	assert.True(t, ok)
	assert.Contains(t, details, "provider")
	assert.Contains(t, details, "server_url")
	assert.Equal(t, "is required", details["provider"])
}

func TestValidate_OneOf(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Provider:  "emby",
		ServerURL: "http://localhost:8096",
		SeedLimit: 10,
	})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	assert.True(t, errors.As(err, &domainErr))

	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "must be one of: plex jellyfin", details["provider"])
}

func TestValidate_Range(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name  string
		limit int
		valid bool
	}{
		{"below minimum", 0, false},
		{"at minimum", 1, true},
		{"at maximum", 100, true},
		{"above maximum", 101, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(testRequest{
				Provider:  "jellyfin",
				ServerURL: "http://localhost:8096",
				SeedLimit: tt.limit,
			})
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_InvalidURL(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Provider:  "plex",
		ServerURL: "not-a-url",
		SeedLimit: 10,
	})
	assert.Error(t, err)

	var domainErr *domainerrors.Error
	assert.True(t, errors.As(err, &domainErr))

	details := domainErr.Details.(map[string]string)
	assert.Equal(t, "must be a valid URL", details["server_url"])
}
