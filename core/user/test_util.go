package user

import (
	"context"

	"github.com/trezcool/amal/core"
)

// serviceMock sends emails synchronously so that tests can inspect them right away.
type serviceMock struct {
	*service
}

func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	return &serviceMock{service: newService(repo, mailSvc, conf)}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return ErrInactive
	}
	svc.sendPasswordResetMail(usr)
	return nil
}

// MakeResetToken returns a valid password reset token for usr.
func MakeResetToken(usr User, conf *core.Config) string {
	return newTokenGenerator(conf.SecretKey, conf.Server.PasswordResetTimeoutDelta).make(usr)
}
