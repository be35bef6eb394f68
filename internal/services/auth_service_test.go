package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	errs "shopmart/internal/errors"
	"shopmart/internal/repos"
	"shopmart/internal/services"
)

func TestRegisterAndLogin(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	id, err := svc.Register("carol", "carol@shopmart.test", "s3cretpw", "3 Pine Road", "555-0103")
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	u, err := svc.Login("sid-carol", "carol@shopmart.test", "s3cretpw")
	require.NoError(t, err)
	require.Equal(t, "carol", u.Username)
	require.False(t, u.IsAdmin())

	// The session now resolves to the user
	cur, err := svc.CurrentUser("sid-carol")
	require.NoError(t, err)
	require.NotNil(t, cur)
	require.Equal(t, id, cur.ID)

	// Email lookup is case-insensitive
	_, err = svc.Login("sid-carol2", "CAROL@shopmart.test", "s3cretpw")
	require.NoError(t, err)

	_, err = svc.Login("sid-x", "carol@shopmart.test", "wrong")
	require.ErrorIs(t, err, errs.ErrBadCredentials)
	_, err = svc.Login("sid-x", "nobody@shopmart.test", "s3cretpw")
	require.ErrorIs(t, err, errs.ErrBadCredentials)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	_, err := svc.Register("dupe", "alice@shopmart.test", "s3cretpw", "", "")
	require.Error(t, err, "seeded email must stay unique")

	_, err = svc.Register("dupe", "ALICE@shopmart.test", "s3cretpw", "", "")
	require.Error(t, err, "uniqueness ignores case")
}

func TestLogout(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))

	_, err := svc.Login("sid-bye", "alice@shopmart.test", "Passw0rd!")
	require.NoError(t, err)
	require.NoError(t, svc.Logout("sid-bye"))

	cur, err := svc.CurrentUser("sid-bye")
	require.NoError(t, err)
	require.Nil(t, cur)
}

func TestChangePassword(t *testing.T) {
	db := memdb(t)
	svc := services.NewAuthService(repos.NewUserRepo(db))
	alice := userID(t, db, "alice@shopmart.test")

	require.ErrorIs(t, svc.ChangePassword(alice, "wrong-old", "newpassword"), errs.ErrBadCredentials)

	require.NoError(t, svc.ChangePassword(alice, "Passw0rd!", "newpassword"))
	_, err := svc.Login("sid-a", "alice@shopmart.test", "Passw0rd!")
	require.ErrorIs(t, err, errs.ErrBadCredentials)
	_, err = svc.Login("sid-a", "alice@shopmart.test", "newpassword")
	require.NoError(t, err)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	db := memdb(t)
	userRepo := repos.NewUserRepo(db)
	svc := services.NewAuthService(userRepo)
	bob := userID(t, db, "bob@shopmart.test")

	// A live session exists, then the account is deactivated.
	_, err := svc.Login("sid-bob", "bob@shopmart.test", "Passw0rd!")
	require.NoError(t, err)

	done, err := userRepo.Deactivate(bob)
	require.NoError(t, err)
	require.True(t, done)

	// The session no longer resolves and a fresh login is refused.
	cur, err := svc.CurrentUser("sid-bob")
	require.NoError(t, err)
	require.Nil(t, cur)
	_, err = svc.Login("sid-bob2", "bob@shopmart.test", "Passw0rd!")
	require.ErrorIs(t, err, errs.ErrAccountInactive)

	// Admin accounts cannot be deactivated.
	admin := userID(t, db, "admin@shopmart.test")
	done, err = userRepo.Deactivate(admin)
	require.NoError(t, err)
	require.False(t, done)
}
