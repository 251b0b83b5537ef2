package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/daily-journal/blog/internal/api/metrics"
	"github.com/daily-journal/blog/internal/api/view"
	"github.com/daily-journal/blog/internal/core/domain"
	"github.com/daily-journal/blog/internal/core/ports"
)

const (
	signupPath = "/signup"
	loginPath  = "/login"
)

type AccountHandler struct {
	accountService ports.AccountService
}

func NewAccountHandler(accountService ports.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

type credentialsRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// SignupForm renders the signup page.
//
// @Summary      Signup form
// @Tags         accounts
// @Produce      html
// @Success      200
// @Router       /signup [get]
func (h *AccountHandler) SignupForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageSignup, nil)
}

// Signup registers a new account.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       x-www-form-urlencoded
// @Param        email     formData  string  false  "Email"
// @Param        password  formData  string  false  "Password"
// @Success      302  {string}  string  "redirect to /login on success, /signup otherwise"
// @Router       /signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.Redirect(http.StatusFound, signupPath)
	}

	_, err := h.accountService.Signup(c.Request().Context(), req.Email, req.Password)
	switch {
	case err == nil:
		metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		return c.Redirect(http.StatusFound, loginPath)
	case errors.Is(err, domain.ErrAccountExists):
		metrics.SignupsTotal.WithLabelValues(metrics.ResultExists).Inc()
	default:
		metrics.SignupsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		metrics.StoreErrorsTotal.WithLabelValues("signup").Inc()
	}
	return c.Redirect(http.StatusFound, signupPath)
}

// LoginForm renders the login page.
//
// @Summary      Login form
// @Tags         accounts
// @Produce      html
// @Success      200
// @Router       /login [get]
func (h *AccountHandler) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, view.PageLogin, nil)
}

// Login checks credentials. The redirect is the same whichever check failed.
//
// @Summary      Log in
// @Tags         accounts
// @Accept       x-www-form-urlencoded
// @Param        email     formData  string  false  "Email"
// @Param        password  formData  string  false  "Password"
// @Success      302  {string}  string  "redirect to / on success, /login otherwise"
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.Redirect(http.StatusFound, loginPath)
	}

	if _, err := h.accountService.Login(c.Request().Context(), req.Email, req.Password); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.StoreErrorsTotal.WithLabelValues("login").Inc()
		}
		return c.Redirect(http.StatusFound, loginPath)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.Redirect(http.StatusFound, homePath)
}
