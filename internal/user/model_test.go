package user

import (
	"encoding/json"
	"strings"
	"testing"

	"users-api/internal/database"
)

func TestUserView_NeverSerializesPasswordHash(t *testing.T) {
	u := User{
		ID:             1,
		Email:          "anna@example.com",
		Username:       "Anna",
		HashedPassword: "$argon2id$v=19$secret",
		IsActive:       true,
	}

	for name, value := range map[string]any{
		"write-model": u,
		"read-view":   u.View(),
	} {
		raw, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("marshal %s: %v", name, err)
		}
		if strings.Contains(string(raw), "secret") || strings.Contains(string(raw), "hashed_password") {
			t.Errorf("%s leaks the password hash: %s", name, raw)
		}
	}
}

func TestUserView_Fields(t *testing.T) {
	avatar := "https://cdn.example.com/anna.png"
	phone := "+71234567890"

	dbu := &database.User{
		ID:             42,
		Email:          "anna@example.com",
		Username:       "Anna",
		HashedPassword: "hash",
		Avatar:         &avatar,
		PhoneNumber:    &phone,
		IsActive:       true,
		IsSuperuser:    false,
		IsVerified:     true,
	}

	view := mapDBUserToView(dbu)

	if view.ID != 42 || view.Email != "anna@example.com" || view.Username != "Anna" {
		t.Errorf("unexpected view: %+v", view)
	}
	if view.Avatar == nil || *view.Avatar != avatar {
		t.Errorf("avatar not mapped: %+v", view.Avatar)
	}
	if view.PhoneNumber == nil || *view.PhoneNumber != phone {
		t.Errorf("phone not mapped: %+v", view.PhoneNumber)
	}
	if !view.IsActive || view.IsSuperuser || !view.IsVerified {
		t.Errorf("flags not mapped: %+v", view)
	}
}

func TestMapDBUserToModel_KeepsHash(t *testing.T) {
	dbu := &database.User{ID: 1, Email: "a@b.c", Username: "a", HashedPassword: "hash"}

	model := mapDBUserToModel(dbu)
	if model.HashedPassword != "hash" {
		t.Errorf("write-model must keep the hash for the auth layer, got %q", model.HashedPassword)
	}
}
