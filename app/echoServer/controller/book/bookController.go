package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer/jwtx"
	bookrepo "librarymgmt/repository/book"
	booksvc "librarymgmt/service/book"
	"librarymgmt/util/response"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

func bookID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.JSON(http.StatusBadRequest, response.New(400, "Invalid book id", nil))
		return 0, false
	}
	return id, true
}

// POST /managebook/add/new/book/
func (ct *Controller) Add(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	var req AddBookReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data for the new book", nil))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Validation error: "+err.Error(), nil))
	}

	b, err := ct.Svc.Add(c.Request().Context(), caller, booksvc.AddReq{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Summary:     req.Summary,
		ISBN:        req.ISBN,
		AuthorID:    req.AuthorID,
		PublisherID: req.PublisherID,
		PublishYear: req.PublishYear,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotLibrarian:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, you are not authorized user to Add Book!!!", nil))
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest,
				response.New(400, "Please enter proper data for the new book", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("book add failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while adding the new book!!!", nil))
		}
	}

	return c.JSON(http.StatusOK,
		response.New(200, "New Book Added Successfully!!!", b))
}

// GET /managebook/view/book/:id/detail/
func (ct *Controller) Detail(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	id, ok := bookID(c)
	if !ok {
		return nil
	}

	b, err := ct.Svc.Detail(c.Request().Context(), caller, id)
	if err != nil {
		if booksvc.Code(err) == booksvc.ErrBookNotFound {
			return c.JSON(http.StatusOK, response.New(200,
				"Requested book is not exist in system, Please try after sometime!!!", nil))
		}
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("book detail failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while fetching Book Details!!!", nil))
	}

	return c.JSON(http.StatusOK,
		response.New(200, "Fetched Book Details successfully!!!", b))
}

// GET /managebook/books/
func (ct *Controller) List(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}

	books, err := ct.Svc.List(c.Request().Context(), caller)
	if err != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		ct.Log.Error("book list failed", "err", err, "req_id", rid)
		return c.JSON(http.StatusInternalServerError,
			response.New(500, "Something went wrong while fetching the books!!!", nil))
	}
	return c.JSON(http.StatusOK,
		response.New(200, "Fetched all books successfully!!!", books))
}

// PUT /managebook/update/book/:id/detail/
func (ct *Controller) Update(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	id, ok := bookID(c)
	if !ok {
		return nil
	}

	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		ct.Log.Warn("bind failed", "path", c.Path(), "err", err)
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Please enter proper data to update the book", nil))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest,
			response.New(400, "Validation error: "+err.Error(), nil))
	}

	b, err := ct.Svc.Update(c.Request().Context(), caller, id, bookrepo.BookUpdate{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Summary:     req.Summary,
		ISBN:        req.ISBN,
		AuthorID:    req.AuthorID,
		PublisherID: req.PublisherID,
		PublishYear: req.PublishYear,
	})
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotLibrarian:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, You don't have rights to update the book details!!!", nil))
		case booksvc.ErrBookNotFound:
			return c.JSON(http.StatusOK, response.New(200,
				"Requested book is not exist in system, Please try after sometime!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("book update failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while updating the book!!!", nil))
		}
	}

	return c.JSON(http.StatusOK,
		response.New(200, "Book updated successfully!!!", b))
}

// DELETE /managebook/delete/book/:id/
func (ct *Controller) Delete(c echo.Context) error {
	caller, err := jwtx.Account(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.New(401, "Token not found", nil))
	}
	id, ok := bookID(c)
	if !ok {
		return nil
	}

	if err := ct.Svc.Delete(c.Request().Context(), caller, id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotLibrarian:
			return c.JSON(http.StatusOK, response.New(200,
				"As You are Logged-in as Member User, you are not authorized user to Delete Book!!!", nil))
		case booksvc.ErrBookNotFound:
			return c.JSON(http.StatusOK, response.New(400,
				"Requested book is not exist in system, Please try after sometime!!!", nil))
		default:
			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			ct.Log.Error("book delete failed", "err", err, "req_id", rid)
			return c.JSON(http.StatusInternalServerError,
				response.New(500, "Something went wrong while deleting the book!!!", nil))
		}
	}

	return c.JSON(http.StatusOK,
		response.New(200, "Book Deleted successfully!!!", nil))
}
