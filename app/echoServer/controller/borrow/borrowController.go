package borrow

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer/jwtx"
	borrowsvc "librarymgmt/service/borrow"
	"librarymgmt/util/response"
)

type Controller struct {
	Svc borrowsvc.Service
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.JSON(http.StatusBadRequest, response.New(400, "Invalid id", nil))
		return 0, false
	}
	return id, true
}

// POST /managebook/borrow/book/:id/
func (ct *Controller) Request(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	bookID, ok := pathID(c)
	if !ok {
		return nil
	}

	rec, err := ct.Svc.Request(c.Request().Context(), caller, bookID)
	if err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrBookNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested book is not exist in system, Please try after sometime!!!", nil))
		case borrowsvc.ErrIssuedToYou:
			return c.JSON(http.StatusOK, response.New(200,
				"You have already assigned this book from library, Please choose another book!!!", nil))
		case borrowsvc.ErrIssuedToOther:
			return c.JSON(http.StatusOK, response.New(200,
				"This book is already given to another students, Please choose another book!!!", nil))
		case borrowsvc.ErrRequestedByYou:
			return c.JSON(http.StatusOK, response.New(200,
				"You already requested this book from library, Please choose another book!!!", nil))
		case borrowsvc.ErrRequestedByOther:
			return c.JSON(http.StatusOK, response.New(200,
				"This book is already requested by other student, Please try with other book!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("borrow request failed", "err", err, "book_id", bookID, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while requesting the book!!!", nil))
		}
	}

	return c.JSON(http.StatusOK, response.New(200,
		"New book request successfully submitted, Librarian will approve your request shortly", rec))
}

// POST /managebook/approve/book/borrow/:id/ where :id is the borrow record.
func (ct *Controller) Approve(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	recordID, ok := pathID(c)
	if !ok {
		return nil
	}

	if err := ct.Svc.Approve(c.Request().Context(), caller, recordID); err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrNotLibrarian:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, You don't have rights to approve book borrow request!!!", nil))
		case borrowsvc.ErrRecordNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested book borrow request is not exist in system, Please try after sometime!!!", nil))
		case borrowsvc.ErrAlreadyIssued:
			return c.JSON(http.StatusOK, response.New(200,
				"This book borrow request is already approved and book has been issued!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("borrow approve failed", "err", err, "record_id", recordID, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while approving the book borrow request!!!", nil))
		}
	}

	return c.JSON(http.StatusOK, response.New(200,
		"Book request Approved successfully, book has been issued, You can collect book from library!!!", nil))
}

// POST /managebook/return/borrow/book/:id/ where :id is the book.
func (ct *Controller) Return(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	bookID, ok := pathID(c)
	if !ok {
		return nil
	}

	if err := ct.Svc.Return(c.Request().Context(), caller, bookID); err != nil {
		switch borrowsvc.Code(err) {
		case borrowsvc.ErrBookNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested book is not exist in system, Please try after sometime!!!", nil))
		case borrowsvc.ErrNotBorrowed:
			return c.JSON(http.StatusOK, response.New(200,
				"This book is not borrowed from library, Please check the book details!!!", nil))
		case borrowsvc.ErrNotOwner:
			return c.JSON(http.StatusOK, response.New(200,
				"This book is not issued to you, So you can not return this book!!!", nil))
		case borrowsvc.ErrNotIssuedYet:
			return c.JSON(http.StatusOK, response.New(200,
				"This book is not issued to you yet, Librarian approval is pending for your request!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("borrow return failed", "err", err, "book_id", bookID, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while returning the book!!!", nil))
		}
	}

	return c.JSON(http.StatusOK, response.New(200,
		"Book return successfully to Library, Thank you!!!", nil))
}

// GET /managebook/pending/book/borrow/requests/
func (ct *Controller) Pending(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	reqs, err := ct.Svc.ListPending(c.Request().Context(), caller)
	if err != nil {
		if borrowsvc.Code(err) == borrowsvc.ErrNotLibrarian {
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, You don't have rights to view pending book borrow requests!!!", nil))
		}
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("pending list failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while fetching pending book borrow requests!!!", nil))
	}

	return c.JSON(http.StatusOK, response.New(200,
		"Fetched details of pending book borrow details successfully!!!", reqs))
}

// GET /managebook/my/borrow/book/list/
func (ct *Controller) MyBorrowed(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	books, err := ct.Svc.MyBorrowedBooks(c.Request().Context(), caller)
	if err != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("my borrowed list failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while fetching your borrowed books!!!", nil))
	}

	return c.JSON(http.StatusOK, response.New(200,
		"Fetched my all borrowed book details successfully!!!", books))
}
