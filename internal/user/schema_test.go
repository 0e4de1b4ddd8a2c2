package user

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestValidatePhoneNumber_Accepts(t *testing.T) {
	for _, phone := range []string{
		"+71234567890",
		"+70000000000",
		"+79998887766",
	} {
		if err := ValidatePhoneNumber(phone); err != nil {
			t.Errorf("ValidatePhoneNumber(%q) returned error: %v", phone, err)
		}
	}
}

func TestValidatePhoneNumber_Rejects(t *testing.T) {
	for _, phone := range []string{
		"",
		"+7123456789",    // 9 digits after +7
		"+712345678901",  // 11 digits after +7
		"+81234567890",   // wrong country code
		"71234567890",    // missing plus
		"+7123456789a",   // non-digit
		"+7 1234567890",  // whitespace
		"8-912-345-67-89",
	} {
		if err := ValidatePhoneNumber(phone); err == nil {
			t.Errorf("ValidatePhoneNumber(%q) accepted, want rejection", phone)
		}
	}
}

func validUpdateRequest() UpdateUserRequest {
	return UpdateUserRequest{
		Email:       "anna@example.com",
		Username:    "Anna",
		Avatar:      strPtr("https://cdn.example.com/anna.png"),
		PhoneNumber: strPtr("+71234567890"),
		IsActive:    true,
		IsVerified:  false,
	}
}

func TestUpdateUserRequest_Validate_OK(t *testing.T) {
	req := validUpdateRequest()
	if err := req.Validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
}

func TestUpdateUserRequest_Validate_OptionalFieldsAbsent(t *testing.T) {
	req := UpdateUserRequest{
		Email:    "anna@example.com",
		Username: "Anna",
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("payload without optional fields rejected: %v", err)
	}
}

func TestUpdateUserRequest_Validate_MissingRequired(t *testing.T) {
	req := validUpdateRequest()
	req.Username = ""
	err := req.Validate()
	if err == nil {
		t.Fatal("payload without username accepted")
	}
	if !strings.Contains(err.Error(), "username is required") {
		t.Errorf("unexpected message: %v", err)
	}

	req = validUpdateRequest()
	req.Email = ""
	err = req.Validate()
	if err == nil {
		t.Fatal("payload without email accepted")
	}
	if !strings.Contains(err.Error(), "email is required") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestUpdateUserRequest_Validate_BadEmail(t *testing.T) {
	req := validUpdateRequest()
	req.Email = "not-an-email"
	if err := req.Validate(); err == nil {
		t.Fatal("payload with malformed email accepted")
	}
}

func TestUpdateUserRequest_Validate_BadPhone(t *testing.T) {
	req := validUpdateRequest()
	req.PhoneNumber = strPtr("+1234567890")
	err := req.Validate()
	if err == nil {
		t.Fatal("payload with malformed phone accepted")
	}
	if !strings.Contains(err.Error(), "phone_number") {
		t.Errorf("message should name the field: %v", err)
	}
}
