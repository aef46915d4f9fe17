package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoIdentity is returned when a credential blob carries no user parameter
var ErrNoIdentity = errors.New("credential has no user parameter")

// Account is one line of the data file. InitData is sent to the API verbatim;
// the identity fields are parsed out of it for display only.
type Account struct {
	Index     int // 1-based position in the data file
	InitData  string
	UserID    int64
	FirstName string
	LastName  string
	Username  string
}

// telegramUser is the JSON document carried in the user query parameter
type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Parse extracts the identity embedded in a credential blob
func Parse(initData string) (Account, error) {
	initData = strings.TrimSpace(initData)
	if initData == "" {
		return Account{}, fmt.Errorf("empty credential")
	}

	values, err := url.ParseQuery(initData)
	if err != nil {
		return Account{}, fmt.Errorf("malformed credential: %w", err)
	}

	raw := values.Get("user")
	if raw == "" {
		return Account{}, ErrNoIdentity
	}

	var user telegramUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return Account{}, fmt.Errorf("malformed user parameter: %w", err)
	}

	return Account{
		InitData:  initData,
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
	}, nil
}

// DisplayName returns the first name, falling back to the username and then the user id
func (a Account) DisplayName() string {
	switch {
	case a.FirstName != "":
		return a.FirstName
	case a.Username != "":
		return a.Username
	case a.UserID != 0:
		return strconv.FormatInt(a.UserID, 10)
	default:
		return fmt.Sprintf("account %d", a.Index)
	}
}

// String is safe to log; it never includes the credential
func (a Account) String() string {
	return fmt.Sprintf("#%d %s", a.Index, a.DisplayName())
}
