package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/setsmith/internal/server"
	"github.com/desertthunder/setsmith/internal/services"
	"github.com/desertthunder/setsmith/internal/shared"
	"github.com/urfave/cli/v3"
)

const loginTimeout = 2 * time.Minute

// AuthLogin sends the user through the backend's login and captures the session cookie on
// the local callback server the backend redirects to.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	loginURL := r.gateway.LoginURL()
	opened := func(err error) {
		if err != nil {
			r.writePlain("Open this URL in your browser:\n%s\n", loginURL)
		} else {
			r.writePlain("Opening browser to sign in...\n")
		}
	}

	if err := r.login(ctx, cmd.String("cookie-name"), cmd.Duration("timeout"), opened); err != nil {
		return err
	}

	ok, err := r.gateway.CheckAuth(ctx)
	if err != nil {
		return err
	}
	r.session.Start(ok)
	if !ok {
		return fmt.Errorf("%w: backend did not accept the captured session", shared.ErrAuthRequired)
	}
	return r.writePlain("✓ Signed in\n")
}

// login runs the callback server, opens the browser and stores the captured cookie.
// opened, when set, learns whether the browser could be opened.
func (r *Runner) login(ctx context.Context, cookieName string, timeout time.Duration, opened func(error)) error {
	logger := shared.WithLogger(r.logger, "attempt", shared.GenerateID())

	handler := server.NewLoginHandler(cookieName)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(logger))
	router.Handler(handler)

	addr := fmt.Sprintf("localhost:%d", r.config.Backend.CallbackPort)
	listener, err := server.Listen(addr, router)
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}
	defer func() {
		if err := listener.Shutdown(); err != nil {
			logger.Warn("callback server shutdown failed", "error", err)
		}
	}()
	logger.Info("waiting for login callback", "addr", listener.Addr())

	err = shared.OpenBrowser(r.gateway.LoginURL())
	if err != nil {
		logger.Warn("failed to open browser", "error", err)
	}
	if opened != nil {
		opened(err)
	}

	if timeout <= 0 {
		timeout = loginTimeout
	}

	select {
	case res := <-handler.Result():
		if res.Err != nil {
			return res.Err
		}
		logger.Info("session captured")
		return r.storeSession(res.Cookie)
	case err := <-listener.Errors():
		return fmt.Errorf("callback server error: %w", err)
	case <-time.After(timeout):
		return fmt.Errorf("%w: no login callback after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tuiLogin adapts [Runner.login] for the TUI, which needs the rebuilt gateway back.
func (r *Runner) tuiLogin(ctx context.Context) (services.Gateway, error) {
	if err := r.login(ctx, server.DefaultSessionCookie, loginTimeout, nil); err != nil {
		return nil, err
	}
	return r.gateway, nil
}

// AuthStatus asks the backend whether the saved session is logged in.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	r.logger.Debug("checking auth status")

	ok, err := r.gateway.CheckAuth(ctx)
	if err != nil && !errors.Is(err, shared.ErrAuthRequired) {
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	}
	r.session.Start(ok)

	r.writePlain("Backend: %s\n", r.config.Backend.BaseURL)
	if ok {
		return r.writePlain("Authentication: ✓ Logged in\n")
	}
	return r.writePlain("Authentication: ✗ Not logged in (run 'setsmith auth login')\n")
}

// AuthLogout signs out on the backend and forgets the saved cookie.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.gateway.SignOut(ctx); err != nil && !errors.Is(err, shared.ErrAuthRequired) {
		return err
	}
	r.session.End()

	if err := r.storeSession(""); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}
