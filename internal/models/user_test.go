// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestCanModify(t *testing.T) {
	authorID := uuid.New()
	post := &Post{ID: uuid.New(), AuthorID: authorID}

	author := &User{ID: authorID, Role: RoleUser}
	admin := &User{ID: uuid.New(), Role: RoleAdmin}
	stranger := &User{ID: uuid.New(), Role: RoleAuthor}

	if !author.CanModify(post) {
		t.Error("post author should be allowed to modify their post")
	}
	if !admin.CanModify(post) {
		t.Error("admin should be allowed to modify any post")
	}
	if stranger.CanModify(post) {
		t.Error("non-author, non-admin must not modify the post")
	}

	var nobody *User
	if nobody.CanModify(post) {
		t.Error("nil actor must not modify anything")
	}
	if admin.CanModify(nil) {
		t.Error("nil post is never modifiable")
	}
}

func TestValidRole(t *testing.T) {
	for _, r := range []string{"user", "author", "admin"} {
		if !ValidRole(r) {
			t.Errorf("ValidRole(%q) = false, want true", r)
		}
	}
	for _, r := range []string{"", "editor", "Admin", "superuser"} {
		if ValidRole(r) {
			t.Errorf("ValidRole(%q) = true, want false", r)
		}
	}
}

func TestUserSerializationHidesSecrets(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"
	u := &User{
		ID:           uuid.New(),
		Username:     "writer",
		Email:        "writer@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		TOTPSecret:   &secret,
		Avatar:       DefaultAvatar,
	}

	out, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), u.PasswordHash) {
		t.Error("password hash leaked into JSON output")
	}
	if strings.Contains(string(out), secret) {
		t.Error("TOTP secret leaked into JSON output")
	}
}

func TestUserSummaryExcludesEmail(t *testing.T) {
	u := &User{
		ID:       uuid.New(),
		Username: "writer",
		Email:    "writer@example.com",
		Name:     "A Writer",
		Avatar:   DefaultAvatar,
	}

	out, err := json.Marshal(u.Summary())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), "writer@example.com") {
		t.Error("email must not appear in populated summaries")
	}
	if !strings.Contains(string(out), `"username":"writer"`) {
		t.Errorf("summary missing username: %s", out)
	}
}
