package auth

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// AuthControllerRoutes holds the mount points for the session
// lifecycle endpoints.
type AuthControllerRoutes struct {
	Register       string
	Login          string
	Logout         string
	Refresh        string
	Me             string
	Profile        string
	ChangePassword string
}

// AuthController exposes the session lifecycle as a JSON API.
type AuthController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Routes *AuthControllerRoutes
	Auther *Auther
	Cookie *CookiePolicy
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther *Auther) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerCookie(policy *CookiePolicy) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Cookie = policy
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Register:       "/register",
			Login:          "/login",
			Logout:         "/logout",
			Refresh:        "/refresh-token",
			Me:             "/me",
			Profile:        "/profile",
			ChangePassword: "/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Cookie == nil {
		c.Cookie = &CookiePolicy{
			Name:   DefaultCookieName,
			MaxAge: DefaultCookieMaxAge,
		}
	}

	return c
}

// RegisterAuthRoutes mounts the session lifecycle endpoints. The
// gate guards everything that requires a live session; registration,
// login, and logout stay public.
func RegisterAuthRoutes(app fiber.Router, gate *Gate, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Register, controller.RegistrationCreate).
		Name("register.post")
	app.Post(controller.Routes.Login, controller.LoginPost).
		Name("sign-in.post")
	app.Post(controller.Routes.Logout, controller.LogOut).
		Name("sign-out.post")
	app.Post(controller.Routes.Refresh, controller.RefreshToken).
		Name("refresh.post")

	app.Get(controller.Routes.Me, gate.RequireAuth(), controller.Me).
		Name("me.get")
	app.Put(controller.Routes.Profile, gate.RequireAuth(), controller.UpdateProfile).
		Name("profile.put")
	app.Put(controller.Routes.ChangePassword, gate.RequireAuth(), controller.ChangePassword).
		Name("change-password.put")

	return controller
}

// RegistrationCreatePayload is the registration body.
type RegistrationCreatePayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) RegistrationCreate(c *fiber.Ctx) error {
	payload := new(RegistrationCreatePayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: %s", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body"))
	}

	// Length rules apply to the trimmed name; padding must not let a
	// too-short name through.
	payload.Name = strings.TrimSpace(payload.Name)

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: %s", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	var created *User
	msg := RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(user *User) {
			created = user
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo)
	if err := registerUser.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("register user execute: %s", err)
		return a.renderError(c, err)
	}

	token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		// The account exists but the session could not be minted.
		// Let the client retry through the login endpoint.
		a.Logger.Error("register user login: %s", err)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user": created.Project(),
		})
	}

	a.Cookie.Write(c, token)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  created.Project(),
		"token": token,
	})
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: %s", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	token, identity, err := a.Auther.LoginIdentity(c.UserContext(), payload.Identifier, payload.Password)
	if err != nil {
		// Same response whether the account is missing or the
		// password is wrong.
		a.Logger.Debug("login rejected: %s", err)
		return Unauthorized(c)
	}

	a.Cookie.Write(c, token)

	return c.JSON(fiber.Map{
		"user":  ProjectIdentity(identity),
		"token": token,
	})
}

func (a *AuthController) LogOut(c *fiber.Ctx) error {
	a.Cookie.Clear(c)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// RefreshToken exchanges a still valid token for a fresh one with a
// renewed expiration. An absent or invalid token gets the same 401
// as any other unauthenticated request.
func (a *AuthController) RefreshToken(c *fiber.Ctx) error {
	raw, err := ExtractRawToken(c, GetExtractors(DefaultTokenLookup, DefaultAuthScheme))
	if err != nil {
		a.Logger.Debug("refresh token extract: %s", err)
		return Unauthorized(c)
	}

	session, err := a.Auther.SessionFromToken(raw)
	if err != nil {
		a.Logger.Debug("refresh token validate: %s", err)
		return Unauthorized(c)
	}

	token, err := a.Auther.Refresh(c.UserContext(), session)
	if err != nil {
		a.Logger.Error("refresh token mint: %s", err)
		return a.renderError(c, err)
	}

	a.Cookie.Write(c, token)

	return c.JSON(fiber.Map{
		"token": token,
	})
}

func (a *AuthController) Me(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return Unauthorized(c)
	}

	return c.JSON(fiber.Map{
		"user": ProjectIdentity(identity),
	})
}

// UpdateProfilePayload carries the fields an account holder may edit
// about themselves. Email, role, and credentials go through their own
// flows.
type UpdateProfilePayload struct {
	Name         string `json:"name"`
	ProfileImage string `json:"profile_image"`
}

// Validate will validate the payload
func (r UpdateProfilePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 60)),
		validation.Field(&r.ProfileImage, validation.Length(0, 500)),
	)
}

func (a *AuthController) UpdateProfile(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return Unauthorized(c)
	}

	payload := new(UpdateProfilePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("update profile parse payload: %s", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body"))
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.ProfileImage = strings.TrimSpace(payload.ProfileImage)

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	uid, err := uuid.Parse(identity.ID())
	if err != nil {
		a.Logger.Error("update profile identity id: %s", err)
		return Unauthorized(c)
	}

	user, err := a.Repo.Users().UpdateProfile(c.UserContext(), uid, payload.Name, payload.ProfileImage)
	if err != nil {
		a.Logger.Error("update profile: %s", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": user.Project(),
	})
}

// ChangePasswordPayload carries the credential rotation request.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Validate will validate the payload
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
	)
}

func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	identity, ok := IdentityFromFiber(c)
	if !ok {
		return Unauthorized(c)
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("change password parse payload: %s", err)
		return a.renderError(c, errors.Wrap(err, errors.CategoryBadInput, "unable to parse request body"))
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	msg := ChangePasswordMessage{
		UserID:          identity.ID(),
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}

	changePassword := NewChangePasswordHandler(a.Repo)
	if err := changePassword.Execute(c.UserContext(), msg); err != nil {
		a.Logger.Error("change password execute: %s", err)
		return a.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Password updated",
	})
}

// renderError maps a rich error to its HTTP status and a single
// message field. Internal detail stays in the logs.
func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	status, message := httpStatusFor(err)
	return c.Status(status).JSON(fiber.Map{
		"message": message,
	})
}

func httpStatusFor(err error) (int, string) {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return fiber.StatusInternalServerError, "Internal Server Error"
	}

	switch rich.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized, "Unauthorized"
	case errors.CategoryAuthz:
		return fiber.StatusForbidden, "Forbidden"
	case errors.CategoryNotFound:
		return fiber.StatusNotFound, "Not Found"
	case errors.CategoryConflict:
		return fiber.StatusConflict, rich.Message
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest, rich.Message
	default:
		return fiber.StatusInternalServerError, "Internal Server Error"
	}
}
