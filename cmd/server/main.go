// Command server runs the Guardians of the Spear membership and
// story-content API.
package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/gots/membership/internal/config"
    "github.com/gots/membership/internal/database"
    "github.com/gots/membership/internal/handler"
    "github.com/gots/membership/internal/middleware"
    "github.com/gots/membership/internal/queue"
    "github.com/gots/membership/internal/repository"
    "github.com/gots/membership/internal/router"
    queuepublisher "github.com/gots/membership/internal/service"
)

func main() {
    // .env is a local-dev convenience; in deployment the variables
    // come from the environment and the file is absent.
    if err := godotenv.Load(); err != nil {
        log.Println("no .env file found, relying on environment")
    }
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable: response cache and rate limiter disabled")
    }

    members := repository.NewMemberRepo(db)
    tokens := repository.NewRefreshTokenRepo(db)
    resets := repository.NewResetTokenRepo(db)
    audit := repository.NewLoginHistoryRepo(db)
    scenes := repository.NewSceneRepo(db)

    h := router.Handlers{
        Auth:     handler.NewAuthHandler(cfg, members, tokens, resets, audit, queuepublisher.PublishMailerEvent),
        Content:  handler.NewContentHandler(scenes),
        Progress: handler.NewProgressHandler(members),
        OptIn:    handler.NewOptInHandler(queuepublisher.PublishMailerEvent),
        Health:   handler.NewHealthHandler(db),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Logger())
    e.Use(echomw.Recover())

    var resolver middleware.MemberResolver = members
    router.Register(e, h, cfg, resolver, rdb)

    // The mailer consumer drains the queue in-process.  It reconnects
    // on broker failure and never returns under normal operation.
    go func() {
        if err := queue.StartMailerConsumer(); err != nil {
            log.Printf("mailer consumer stopped: %v", err)
        }
    }()

    log.Fatal(e.Start(":" + cfg.Port))
}
