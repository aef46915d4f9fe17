package accounts

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func makeInitData(userJSON string) string {
	return "query_id=AAHdF6IQAAAAAN0XohDhrOrc&user=" + url.QueryEscape(userJSON) + "&auth_date=1718000000&hash=c501b71e775f74ce10e377dea85a7ea2"
}

func TestParse(t *testing.T) {
	blob := makeInitData(`{"id":279058397,"first_name":"Vladislav","last_name":"K","username":"vdkfrost","language_code":"ru"}`)

	account, err := Parse(blob)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if account.UserID != 279058397 {
		t.Errorf("UserID = %d", account.UserID)
	}
	if account.FirstName != "Vladislav" || account.LastName != "K" || account.Username != "vdkfrost" {
		t.Errorf("unexpected identity: %+v", account)
	}
	if account.InitData != blob {
		t.Error("InitData must be kept verbatim")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		blob string
		is   error
	}{
		{"empty", "   ", nil},
		{"no user", "query_id=abc&auth_date=1", ErrNoIdentity},
		{"bad json", makeInitData(`{"id":`), nil},
		{"bad escape", "user=%zz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.blob)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		account Account
		want    string
	}{
		{Account{FirstName: "Alice", Username: "alice", UserID: 1}, "Alice"},
		{Account{Username: "alice", UserID: 1}, "alice"},
		{Account{UserID: 42}, "42"},
		{Account{Index: 3}, "account 3"},
	}

	for _, tt := range tests {
		if got := tt.account.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestStringHidesCredential(t *testing.T) {
	account, err := Parse(makeInitData(`{"id":1,"first_name":"Alice"}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	account.Index = 2

	s := account.String()
	if s != "#2 Alice" {
		t.Errorf("String() = %q", s)
	}
	if strings.Contains(s, "hash") {
		t.Error("String() leaked the credential")
	}
}
