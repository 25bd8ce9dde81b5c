//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request SignupRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid request",
			request: SignupRequest{
				Name:            "Asha Rao",
				Email:           "asha@example.com",
				Password:        "secret1",
				ConfirmPassword: "secret1",
			},
			wantErr: false,
		},
		{
			name: "missing name",
			request: SignupRequest{
				Email:           "asha@example.com",
				Password:        "secret1",
				ConfirmPassword: "secret1",
			},
			wantErr: true,
			errMsg:  "name - is required",
		},
		{
			name: "invalid email format",
			request: SignupRequest{
				Name:            "Asha Rao",
				Email:           "not-an-email",
				Password:        "secret1",
				ConfirmPassword: "secret1",
			},
			wantErr: true,
			errMsg:  "email - must be a valid email address",
		},
		{
			name: "password too short",
			request: SignupRequest{
				Name:            "Asha Rao",
				Email:           "asha@example.com",
				Password:        "12345",
				ConfirmPassword: "12345",
			},
			wantErr: true,
			errMsg:  "password - must be at least 6",
		},
		{
			name: "confirmation mismatch",
			request: SignupRequest{
				Name:            "Asha Rao",
				Email:           "asha@example.com",
				Password:        "secret1",
				ConfirmPassword: "secret2",
			},
			wantErr: true,
			errMsg:  "confirm_password - must match Password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, ValidationMessage(err), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyRequest_Validation(t *testing.T) {
	valid := VerifyRequest{Email: "asha@example.com", Code: uuid.NewString()}
	assert.NoError(t, valid.Validate())

	bad := VerifyRequest{Email: "asha@example.com", Code: "123456"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, ValidationMessage(err), "code")
}

func TestUpdatePasswordRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request UpdatePasswordRequest
		errMsg  string
	}{
		{
			name:    "valid",
			request: UpdatePasswordRequest{CurrentPassword: "oldpass", NewPassword: "newpass", ConfirmPassword: "newpass"},
		},
		{
			name:    "same as current",
			request: UpdatePasswordRequest{CurrentPassword: "oldpass", NewPassword: "oldpass", ConfirmPassword: "oldpass"},
			errMsg:  "must differ from CurrentPassword",
		},
		{
			name:    "confirmation mismatch",
			request: UpdatePasswordRequest{CurrentPassword: "oldpass", NewPassword: "newpass", ConfirmPassword: "newpas"},
			errMsg:  "must match NewPassword",
		},
		{
			name:    "too short",
			request: UpdatePasswordRequest{CurrentPassword: "oldpass", NewPassword: "abc", ConfirmPassword: "abc"},
			errMsg:  "must be at least 6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, ValidationMessage(err), tt.errMsg)
		})
	}
}

func TestUpdateProfileRequest_Validation(t *testing.T) {
	negative := -1
	years := 3

	assert.NoError(t, (&UpdateProfileRequest{Name: "Asha", Experience: &years}).Validate())
	assert.Error(t, (&UpdateProfileRequest{Name: "Asha", Experience: &negative}).Validate())
	assert.Error(t, (&UpdateProfileRequest{Name: ""}).Validate())
}

func TestUser_JSONOmitsNothingSensitive(t *testing.T) {
	user := User{
		ID:        uuid.New(),
		Name:      "Asha",
		Email:     "asha@example.com",
		Skills:    StringList{"Go", "SQL"},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "password_hash")
	assert.Equal(t, []any{"Go", "SQL"}, raw["skills"])
}

func TestStringList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  StringList
	}{
		{name: "array", input: `["Go", " SQL ", ""]`, want: StringList{"Go", "SQL"}},
		{name: "comma string", input: `"Go, React ,,Postgres"`, want: StringList{"Go", "React", "Postgres"}},
		{name: "null", input: `null`, want: nil},
		{name: "empty string", input: `""`, want: StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &bad))
}
