package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer/controller/auth"
	"librarymgmt/app/echoServer/controller/book"
	"librarymgmt/app/echoServer/controller/borrow"
	"librarymgmt/app/echoServer/controller/user"
	userrepo "librarymgmt/repository/user"
)

type C struct {
	Auth      *auth.Controller
	User      *user.Controller
	Book      *book.Controller
	Borrow    *borrow.Controller
	JWTSecret string
	UserRepo  userrepo.Repo
}

func Register(e *echo.Echo, c C) {
	// Public
	e.POST("/register/librarian/", c.Auth.RegisterLibrarian)
	e.POST("/register/member/", c.Auth.RegisterMember)
	e.POST("/user/login/", c.Auth.Login)
	e.GET("/activate/:uid/:token/", c.Auth.Activate)

	// Auth
	g := e.Group("")
	g.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	g.Use(Auth(c.UserRepo, c.JWTSecret))

	// Users
	g.POST("/librarian/create/member/", c.Auth.RegisterMemberByLibrarian)
	g.POST("/user/logout/", c.Auth.Logout)
	g.PUT("/update/user/", c.User.Update)
	g.PUT("/update/user/:id/", c.User.Update)
	g.DELETE("/delete/user/:id/", c.User.Delete)
	g.DELETE("/delete/member/user/", c.User.DeleteSelf)
	g.GET("/users/", c.User.List)
	g.GET("/users/:id/", c.User.Detail)

	// Catalog and borrow ledger
	mb := g.Group("/managebook")
	mb.POST("/add/new/book/", c.Book.Add)
	mb.GET("/books/", c.Book.List)
	mb.GET("/view/book/:id/detail/", c.Book.Detail)
	mb.PUT("/update/book/:id/detail/", c.Book.Update)
	mb.DELETE("/delete/book/:id/", c.Book.Delete)

	mb.POST("/borrow/book/:id/", c.Borrow.Request)
	mb.POST("/approve/book/borrow/:id/", c.Borrow.Approve)
	mb.POST("/return/borrow/book/:id/", c.Borrow.Return)
	mb.GET("/my/borrow/book/list/", c.Borrow.MyBorrowed)
	mb.GET("/pending/book/borrow/requests/", c.Borrow.Pending)
}
