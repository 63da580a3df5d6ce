package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"

	"librarymgmt/model"
)

const accountKey = "auth_account"

func SetAccount(c echo.Context, a *model.Account) {
	c.Set(accountKey, a)
}

// Account returns the authenticated caller stashed by the auth middleware.
func Account(c echo.Context) (*model.Account, error) {
	a, ok := c.Get(accountKey).(*model.Account)
	if !ok || a == nil {
		return nil, errors.New("no account in context")
	}
	return a, nil
}
