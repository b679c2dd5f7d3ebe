// Package admin is the operator console: it talks to storage directly to
// bootstrap admin accounts, change roles and list users.
package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/culturehub/internal/common"
	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/auth"
	"github.com/dmitrijs2005/culturehub/internal/server/config"
	"github.com/dmitrijs2005/culturehub/internal/server/models"
	"github.com/dmitrijs2005/culturehub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/culturehub/internal/server/services"
)

type App struct {
	repos  repomanager.RepositoryManager
	auth   *services.AuthService
	users  *services.UserService
	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens storage (applying migrations) and builds the services the
// console needs.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stderr, level)

	repos, err := repomanager.New(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close(ctx)
		return nil, err
	}

	hasher := auth.NewHasher(c.BcryptCost, int64(c.HashConcurrency))
	tokens := auth.NewTokenIssuer([]byte(c.SecretKey), c.TokenLifetime, time.Now)

	return newApp(repos,
		services.NewAuthService(repos.Users(), hasher, tokens, logger),
		services.NewUserService(repos.Users(), hasher, nil, logger),
		os.Stdin, os.Stdout,
	), nil
}

func newApp(repos repomanager.RepositoryManager, as *services.AuthService, us *services.UserService, in io.Reader, out io.Writer) *App {
	return &App{repos: repos, auth: as, users: us, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.Close(ctx)
	runREPL(ctx, a, a.reader, a.out)
}

// CreateAdmin prompts for name, email and password and creates an account
// with the admin role.
func (a *App) CreateAdmin(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	pw, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	u, err := a.auth.CreateUser(ctx, name, email, string(pw), models.RoleAdmin)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return err
	}
	fmt.Fprintf(a.out, "Admin %s created (id %s)\n", u.Email, u.ID)
	return nil
}

// SetRole prompts for an email and a role and applies it.
func (a *App) SetRole(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	role, err := GetSimpleText(a.reader, "Role (user|admin)", a.out)
	if err != nil {
		return err
	}

	u, err := a.findByEmail(ctx, email)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return err
	}
	if _, err := a.users.SetRole(ctx, u.ID, models.Role(role)); err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return err
	}
	fmt.Fprintf(a.out, "%s is now %s\n", u.Email, role)
	return nil
}

func (a *App) findByEmail(ctx context.Context, email string) (*models.User, error) {
	return a.repos.Users().GetByEmail(ctx, common.NormalizeEmail(email))
}

// ListUsers prints every account as a table.
func (a *App) ListUsers(ctx context.Context) error {
	list, err := a.users.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %s\n", err)
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.CreatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}
