package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer/jwtx"
	"librarymgmt/model"
	userrepo "librarymgmt/repository/user"
	usersvc "librarymgmt/service/user"
	"librarymgmt/util/response"
)

type Controller struct {
	Svc usersvc.Service
	Log *slog.Logger
}

func accountView(a *model.Account) echo.Map {
	v := echo.Map{"user": a}
	if a.Profile != nil {
		v["roles"] = a.Profile.Role.Strings()
	}
	return v
}

// PUT /update/user/ and /update/user/:id/
func (ct *Controller) Update(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	var targetID int64
	if raw := c.Param("id"); raw != "" {
		targetID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || targetID <= 0 {
			return c.JSON(http.StatusBadRequest, response.New(400, "Invalid user id", nil))
		}
	}

	var req UpdateReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data to update", nil))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Validation error: "+err.Error(), nil))
	}

	upd := userrepo.ProfileUpdate{
		Mobile:    req.Mobile,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		BranchID:  req.BranchID,
		Librarian: req.IsLibrarian,
		Member:    req.IsMember,
	}
	target, err := ct.Svc.Update(c.Request().Context(), caller, targetID, upd)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrNotAuthorized:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, You don't have rights to update another user account!!!", nil))
		case usersvc.ErrTargetNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested user is not exist in system, Please try after sometime!!!", nil))
		case usersvc.ErrTargetInactive:
			return c.JSON(http.StatusOK, response.New(400,
				"The user which you trying to update his account is not activated, Please activate account or contact your administrator!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("user update failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while updating the user!!!", nil))
		}
	}

	return c.JSON(http.StatusOK,
		response.New(200, "Profile updated successfully!!!", accountView(target)))
}

// DELETE /delete/user/:id/
func (ct *Controller) Delete(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.JSON(http.StatusBadRequest, response.New(400, "Invalid user id", nil))
	}

	if err := ct.Svc.Delete(c.Request().Context(), caller, targetID); err != nil {
		return ct.deleteError(c, err)
	}
	return c.JSON(http.StatusOK,
		response.New(200, "User & Profile Deleted successfully!!!", nil))
}

// DELETE /delete/member/user/
func (ct *Controller) DeleteSelf(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	if err := ct.Svc.DeleteSelf(c.Request().Context(), caller); err != nil {
		return ct.deleteError(c, err)
	}
	return c.JSON(http.StatusOK,
		response.New(200, "User & Profile Deleted successfully!!!", nil))
}

func (ct *Controller) deleteError(c echo.Context, err error) error {
	switch usersvc.Code(err) {
	case usersvc.ErrDeleteSelf:
		return c.JSON(http.StatusOK, response.New(200,
			"As You are Logged-in as Librarian User, User must not delete itself which is currently Logged-in. Please login with different account!!!", nil))
	case usersvc.ErrNotAuthorized:
		return c.JSON(http.StatusOK, response.New(200,
			"As You are Logged-in as Member User, You don't have rights to delete another user account!!!", nil))
	case usersvc.ErrTargetNotFound:
		return c.JSON(http.StatusOK, response.New(400,
			"Record does not exist in system, Something went wrong while deleting the user!!!", nil))
	default:
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("user delete failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while deleting the user!!!", nil))
	}
}

// GET /users/
func (ct *Controller) List(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	users, err := ct.Svc.List(c.Request().Context(), caller)
	if err != nil {
		if usersvc.Code(err) == usersvc.ErrNotAuthorized {
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, you are not authorized user to access all the user details!!!", nil))
		}
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("user list failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while fetching Users Details!!!", nil))
	}

	views := make([]echo.Map, 0, len(users))
	for i := range users {
		views = append(views, accountView(&users[i]))
	}
	return c.JSON(http.StatusOK,
		response.New(200, "Fetched All Users Details successfully!!!", views))
}

// GET /users/:id/
func (ct *Controller) Detail(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return c.JSON(http.StatusBadRequest, response.New(400, "Invalid user id", nil))
	}

	target, err := ct.Svc.Detail(c.Request().Context(), caller, targetID)
	if err != nil {
		switch usersvc.Code(err) {
		case usersvc.ErrNotAuthorized:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, you are not authorized user to access details of another User Account!!!", nil))
		case usersvc.ErrTargetNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested user is not exist in system, Please try after sometime!!!", nil))
		case usersvc.ErrTargetInactive:
			return c.JSON(http.StatusOK, response.New(400,
				"The user which you trying to get Details his account is not activated, Please activate account or contact your administrator!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("user detail failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while fetching User Details!!!", nil))
		}
	}

	return c.JSON(http.StatusOK,
		response.New(200, "Fetch details successfully!!!", accountView(target)))
}
