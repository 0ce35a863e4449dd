package dto

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestProfileUpdateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ProfileUpdateRequest
		wantErr bool
	}{
		{"empty patch", ProfileUpdateRequest{}, false},
		{"valid username", ProfileUpdateRequest{Username: strPtr("player_one")}, false},
		{"valid with dash", ProfileUpdateRequest{Username: strPtr("a-b")}, false},
		{"too short", ProfileUpdateRequest{Username: strPtr("x")}, true},
		{"too long", ProfileUpdateRequest{Username: strPtr(strings.Repeat("a", 21))}, true},
		{"starts with digit", ProfileUpdateRequest{Username: strPtr("1player")}, true},
		{"illegal chars", ProfileUpdateRequest{Username: strPtr("pl ayer")}, true},
		{"valid avatar", ProfileUpdateRequest{AvatarURL: strPtr("data:image/png;base64,iVBORw0KGgo=")}, false},
		{"empty avatar clears", ProfileUpdateRequest{AvatarURL: strPtr("")}, false},
		{"non data uri", ProfileUpdateRequest{AvatarURL: strPtr("https://example.com/a.png")}, true},
		{"oversized avatar", ProfileUpdateRequest{AvatarURL: strPtr("data:image/png;base64," + strings.Repeat("A", MaxAvatarBytes))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
