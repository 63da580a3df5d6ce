package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"

	"librarymgmt/app/echoServer"
	authctrl "librarymgmt/app/echoServer/controller/auth"
	bookctrl "librarymgmt/app/echoServer/controller/book"
	borrowctrl "librarymgmt/app/echoServer/controller/borrow"
	userctrl "librarymgmt/app/echoServer/controller/user"
	"librarymgmt/app/echoServer/validation"
	"librarymgmt/config"
	bookrepo "librarymgmt/repository/book"
	borrowrepo "librarymgmt/repository/borrow"
	mailrepo "librarymgmt/repository/mail"
	userrepo "librarymgmt/repository/user"
	authsvc "librarymgmt/service/auth"
	booksvc "librarymgmt/service/book"
	borrowsvc "librarymgmt/service/borrow"
	usersvc "librarymgmt/service/user"
	"librarymgmt/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	rr := borrowrepo.New(db)

	var mail mailrepo.Sender
	if cfg.SMTPHost != "" {
		mail = mailrepo.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		mail = mailrepo.NewLog(log)
	}

	// services
	as := authsvc.New(ur, mail, authsvc.Config{
		JWTSecret:    cfg.JWTSecret,
		BaseURL:      cfg.BaseURL,
		PlatformName: cfg.PlatformName,
	})
	us := usersvc.New(ur)
	bs := booksvc.New(br)
	ws := borrowsvc.New(db, rr, br)

	// controllers
	authC := &authctrl.Controller{Svc: as, Log: log}
	userC := &userctrl.Controller{Svc: us, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Log: log}
	borrowC := &borrowctrl.Controller{Svc: ws, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	echoServer.Register(e, echoServer.C{
		Auth:   authC,
		User:   userC,
		Book:   bookC,
		Borrow: borrowC,

		JWTSecret: cfg.JWTSecret,
		UserRepo:  ur,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "PORT_env", os.Getenv("PORT"), "chosen_port", port)

	e.Logger.Fatal(e.Start(":" + port))
}
