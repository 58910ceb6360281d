package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/term"

	"kindergarten_backend/internals/constants"
	authService "kindergarten_backend/internals/features/users/auth/service"
	uModel "kindergarten_backend/internals/features/users/user/model"
	helper "kindergarten_backend/internals/helpers"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type userStore interface {
	FindByEmail(ctx context.Context, email string) (*uModel.UserModel, error)
	Create(ctx context.Context, u *uModel.UserModel) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
}

type commandLine struct {
	users   userStore
	migrate func() error
	out     io.Writer
}

func (cli *commandLine) stdout() io.Writer {
	if cli.out == nil {
		return os.Stdout
	}
	return cli.out
}

func (cli *commandLine) printUsage() {
	w := cli.stdout()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  createadmin -email EMAIL -name NAME - create or promote an admin (password prompted)")
	fmt.Fprintln(w, "  resetpassword -email EMAIL          - set a new password (prompted)")
	fmt.Fprintln(w, "  migrate                             - create/update every table")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAdminCmd := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	createAdminEmail := createAdminCmd.String("email", "", "The admin's email.")
	createAdminName := createAdminCmd.String("name", "Admin", "The admin's display name.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The user's email. The password will be prompted next.")

	switch args[1] {
	case "createadmin":
		if err := createAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*createAdminEmail) == "" {
			createAdminCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.createAdmin(*createAdminEmail, *createAdminName, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if strings.TrimSpace(*resetPasswordEmail) == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordEmail, pwd)

	case "migrate":
		if err := cli.migrate(); err != nil {
			return err
		}
		fmt.Fprintln(cli.stdout(), "migrations applied")
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.stdout(), "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.stdout())
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// createAdmin upserts: user yang sudah ada dipromosikan jadi admin aktif.
func (cli *commandLine) createAdmin(email, name, pwd string) error {
	ctx := context.Background()
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := authService.HashPassword(pwd)
	if err != nil {
		return err
	}

	existing, err := cli.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := cli.users.Update(ctx, existing.ID, map[string]any{
			"role": constants.RoleAdmin, "password": hash, "is_active": true,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cli.stdout(), "user %s promoted to admin\n", email)
		return nil
	case !helper.IsNotFound(err):
		return err
	}

	u := &uModel.UserModel{
		ID:       uuid.New(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Role:     constants.RoleAdmin,
		IsActive: true,
	}
	if err := cli.users.Create(ctx, u); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "admin %s created\n", email)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if helper.IsNotFound(err) {
			return fmt.Errorf("user %s not found", email)
		}
		return err
	}
	hash, err := authService.HashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.users.Update(ctx, usr.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout(), "password updated for %s\n", usr.Email)
	return nil
}
