package auth

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer/jwtx"
	"librarymgmt/model"
	authsvc "librarymgmt/service/auth"
	"librarymgmt/util/response"
)

type Controller struct {
	Svc authsvc.Service
	Log *slog.Logger
}

// POST /register/librarian/
func (ct *Controller) RegisterLibrarian(c echo.Context) error {
	return ct.register(c, model.RoleLibrarian)
}

// POST /register/member/
func (ct *Controller) RegisterMember(c echo.Context) error {
	return ct.register(c, model.RoleMember)
}

func (ct *Controller) register(c echo.Context, role model.Role) error {
	req, ok := ct.bindRegister(c)
	if !ok {
		return nil
	}

	out, err := ct.Svc.Register(c.Request().Context(), req, role, nil)
	if err != nil {
		return ct.registerError(c, err)
	}
	return c.JSON(http.StatusOK, registered(out))
}

// POST /librarian/create/member/
func (ct *Controller) RegisterMemberByLibrarian(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	req, ok := ct.bindRegister(c)
	if !ok {
		return nil
	}

	out, err := ct.Svc.RegisterMemberAs(c.Request().Context(), caller, req)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrNotLibrarian {
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, You don't have rights to create member user account!!!", nil))
		}
		return ct.registerError(c, err)
	}
	return c.JSON(http.StatusOK, registered(out))
}

// bindRegister writes the failure response itself; ok=false means the
// request was already answered.
func (ct *Controller) bindRegister(c echo.Context) (authsvc.RegisterReq, bool) {
	var req RegisterReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		_ = c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data to register", nil))
		return authsvc.RegisterReq{}, false
	}
	if err := c.Validate(&req); err != nil {
		ct.Log.Warn("validation failed", "path", c.Path(), "err", err)
		_ = c.JSON(http.StatusBadRequest,
			response.New(400, "Validation error: "+err.Error(), nil))
		return authsvc.RegisterReq{}, false
	}
	return authsvc.RegisterReq{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Mobile:    req.Mobile,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BranchID:  req.BranchID,
	}, true
}

func registered(out *authsvc.Registered) response.Body {
	return response.New(201,
		"User created successfully and Email has been sent. So please activate account using activation link in mail.",
		echo.Map{
			"user":           out.Account,
			"roles":          out.Account.Profile.Role.Strings(),
			"activation_url": out.ActivationURL,
		})
}

func (ct *Controller) registerError(c echo.Context, err error) error {
	switch authsvc.Code(err) {
	case authsvc.ErrEmailTaken:
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Account with this email already exists!!!", nil))
	case authsvc.ErrUsernameTaken:
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Account with this username already exists!!!", nil))
	case authsvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data to register", nil))
	default:
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("register failed", "err", err, "req_id", rid, "path", c.Path())
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while registering the user!!!", nil))
	}
}

// GET /activate/:uid/:token/
//
// Idempotent on repeat: the second call reports valid_activation=false and
// changes nothing.
func (ct *Controller) Activate(c echo.Context) error {
	out, err := ct.Svc.Activate(c.Request().Context(), c.Param("uid"), c.Param("token"))
	if err != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("activation failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while activating the account!!!", nil))
	}
	if !out.Valid {
		return c.JSON(http.StatusOK, response.New(200,
			"Activation link is not valid or account is already activated!!!",
			echo.Map{"valid_activation": false}))
	}
	return c.JSON(http.StatusOK, response.New(200,
		"Account activated successfully!!!",
		echo.Map{
			"valid_activation": true,
			"token":            out.Token,
			"user_id":          out.Account.ID,
		}))
}

// POST /user/login/
func (ct *Controller) Login(c echo.Context) error {
	var req LoginReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data to login", nil))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusOK,
			response.New(404, "Username and Password must not be empty", nil))
	}

	out, err := ct.Svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrBadInput:
			return c.JSON(http.StatusOK,
				response.New(404, "Username and Password must not be empty", nil))
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusOK,
				response.New(404, "Account with this username does not exists", nil))
		case authsvc.ErrBadPassword:
			return c.JSON(http.StatusUnauthorized,
				response.New(401, "Incorrect Password!!!", nil))
		case authsvc.ErrNoProfile:
			return c.JSON(http.StatusOK,
				response.New(404, "UserProfile not exist, Please contact Administrator!!!", nil))
		case authsvc.ErrInactive:
			return c.JSON(http.StatusOK,
				response.New(404, "Your account is not verified yet, Please contact Administrator!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("login failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something wrong happened", nil))
		}
	}

	return c.JSON(http.StatusOK, response.New(200, "Login Successfully", echo.Map{
		"access_token": out.Token,
		"token":        out.Token,
		"user_id":      out.Account.ID,
		"full_name":    out.Account.FullName(),
		"email_id":     out.Account.Email,
	}))
}

// POST /user/logout/
func (ct *Controller) Logout(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	if err := ct.Svc.Logout(c.Request().Context(), caller.ID); err != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("logout failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while logging out!!!", nil))
	}
	return c.JSON(http.StatusOK, response.New(200, "User logged out successfully.", nil))
}
