package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/amal/core"
	"github.com/trezcool/amal/core/user"
)

// addUser creates a user, or activates the one already using uname or email.
func (cli *commandLine) addUser(name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)
	if name == "" {
		name = uname
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	if errors.Cause(err) == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	}
	switch {
	case err == nil:
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.IsActive = true
		usr.IsAdmin = usr.IsAdmin || isAdmin
		usr.UpdatedAt = core.NowFunc().UTC()
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return errors.Wrap(err, "updating user")

	case errors.Cause(err) == user.ErrNotFound:
		now := core.NowFunc().UTC()
		usr = user.User{
			Name:      name,
			Username:  uname,
			Email:     email,
			IsActive:  true,
			IsAdmin:   isAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return errors.Wrap(err, "creating user")

	default:
		return err
	}
}
