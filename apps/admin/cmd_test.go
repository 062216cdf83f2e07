package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/amal/core/user"
	sqlxrepos "github.com/trezcool/amal/storage/database/sqlx"
	testutil "github.com/trezcool/amal/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)

	origRead, origRun := readPasswordFunc, gooseRunFunc
	t.Cleanup(func() {
		readPasswordFunc = origRead
		gooseRunFunc = origRun
	})

	// start CLI
	return &commandLine{
		db:      db,
		usrRepo: usrRepo,
		out:     new(bytes.Buffer),
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	pwd        string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest, check func(t *testing.T, tt cliTest)) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		mockPassword(tt.pwd)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrStr)
			default:
				require.NoError(t, err)
				if check != nil {
					check(t, tt)
				}
			}
		})
	}
}

func Test_commandLine_root(t *testing.T) {
	cli := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol"`},
		{name: "unknown flag", args: []string{"adduser", "--lol"}, wantErrStr: "unknown flag: --lol"},
	}, nil)
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	var ran []string
	gooseRunFunc = func(command string, _ *sql.DB, _ fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		ran = append(ran, command)
		return nil
	}

	runCLITests(t, cli, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "taraweh_notes", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}, func(t *testing.T, tt cliTest) {
		require.NotEmpty(t, ran)
		assert.Equal(t, tt.args[1], ran[len(ran)-1])
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	existing := testutil.CreateUser(t, usrRepo, "Umar", "umar", "umar@example.com", "", false)

	runCLITests(t, cli, []cliTest{
		{name: "no flags", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no username", args: []string{"adduser", "--email", "aisha@example.com"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "--email", "aisha@example.com", "--username", "aisha"}, wantErr: errHelp},
		{
			name: "create admin",
			args: []string{"adduser", "--email", "Aisha@Example.com", "--username", "Aisha", "--name", "Aisha", "--admin"},
			pwd:  "Sabr&Shukr-2026",
		},
		{
			name: "activate existing",
			args: []string{"adduser", "--email", "umar@example.com", "--username", "umar"},
			pwd:  "Tawakkul#1447",
		},
	}, func(t *testing.T, tt cliTest) {
		usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: strings.ToLower(tt.args[2])})
		require.NoError(t, err)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword(tt.pwd))
	})

	aisha, err := usrRepo.GetUser(context.Background(), user.GetFilter{Username: "aisha"})
	require.NoError(t, err)
	assert.True(t, aisha.IsAdmin)
	assert.Equal(t, "Aisha", aisha.Name)

	umar, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: existing.ID})
	require.NoError(t, err)
	assert.False(t, umar.IsAdmin)
	assert.Equal(t, "Umar", umar.Name)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@example.com", "mdr", true)

	runCLITests(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "--username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "--username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "--username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "--username", "AWE@example.com"}, pwd: "lmao"},
	}, func(t *testing.T, tt cliTest) {
		refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
		require.NoError(t, err)
		assert.NoError(t, refreshed.CheckPassword(tt.pwd))
		assert.Error(t, refreshed.CheckPassword("mdr"))
	})
}
