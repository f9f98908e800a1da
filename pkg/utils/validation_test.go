package utils

import (
	"testing"

	"triptrek-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadRequest struct {
	FileType     string `json:"fileType" validate:"required"`
	LocationName string `json:"locationName,omitempty" validate:"required_without=TripID,max=5"`
	TripID       string `json:"tripId,omitempty"`
	ImageURL     string `json:"imageUrl" validate:"omitempty,url"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name    string
		req     uploadRequest
		wantErr string
	}{
		{name: "valid location", req: uploadRequest{FileType: "image/png", LocationName: "Rome"}},
		{name: "valid trip", req: uploadRequest{FileType: "image/png", TripID: "t1"}},
		{name: "missing type", req: uploadRequest{LocationName: "Rome"}, wantErr: "fileType is required"},
		{name: "no target", req: uploadRequest{FileType: "image/png"}, wantErr: "locationName is required when TripID is empty"},
		{name: "too long", req: uploadRequest{FileType: "image/png", LocationName: "Amsterdam"}, wantErr: "locationName must be at most 5 characters"},
		{
			name:    "several",
			req:     uploadRequest{TripID: "t1", ImageURL: "nope"},
			wantErr: "fileType is required; imageUrl must be a valid URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
