package account

import (
	"errors"
	"time"

	"github.com/quickcal/quickcal/pkg/calendar"
)

var ErrNotFound = errors.New("account not found")

// Account is a Google user known to the service together with the OAuth
// tokens used to reach their calendar.
type Account struct {
	Uid          string
	GoogleId     string
	Email        string
	Name         string
	AccessToken  string
	RefreshToken string
	Expiry       time.Time
}

func (a Account) Identity() calendar.Identity {
	return calendar.Identity{
		Subject:      a.Uid,
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		Expiry:       a.Expiry,
	}
}

type ProfileDTO struct {
	Uid   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a Account) Profile() ProfileDTO {
	return ProfileDTO{Uid: a.Uid, Email: a.Email, Name: a.Name}
}
