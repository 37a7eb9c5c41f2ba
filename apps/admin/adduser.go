package main

import (
	"github.com/pkg/errors"

	"github.com/edulabbr/oratoria/core"
	"github.com/edulabbr/oratoria/core/user"
)

// addSuperUser updates or creates a user.User carrying every role.
func (cli *commandLine) addSuperUser(name, uname, email, pwd string) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByUsernameOrEmail(uname)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(user.NewUser{
			Name:     name,
			Username: uname,
			Email:    email,
			Password: pwd,
			Roles:    user.AllRoles,
		})
		return err
	}

	active := true
	_, err = cli.usrSvc.Update(usr.ID, user.UpdateUser{
		Roles:           user.AllRoles,
		IsActive:        &active,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
