// Command seed inserts demo users into an empty database.
package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"homelist/internal/config"
	"homelist/internal/domain"
	"homelist/internal/repository/gormdb"
	"homelist/internal/service"
)

var demoUsers = []service.RegisterInput{
	{Username: "ali", FullName: "ali khandi", Email: "alikhandi@gmail.com", Password: "Alik@1234", Gender: domain.GenderMale},
	{Username: "fatemeh", FullName: "fatemeh ahmadi", Email: "fatemeh@gmail.com", Password: "Fatemeh@1234", Gender: domain.GenderFemale},
	{Username: "mohammad", FullName: "mohammad mohammadi", Email: "mohammad@gmail.com", Password: "Mohammad@1234", Gender: domain.GenderMale},
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := gormdb.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer gormdb.Close(db)

	userRepo := gormdb.NewUserRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	users := service.NewUserService(userRepo)

	count, err := users.Count(ctx)
	if err != nil {
		logger.Fatalf("count users: %v", err)
	}
	if count > 0 {
		logger.Infof("database already has %d users, nothing to seed", count)
		return
	}

	for _, in := range demoUsers {
		dob := time.Date(1995, time.March, 1, 0, 0, 0, 0, time.UTC)
		in.DateOfBirth = &dob
		user, err := users.Register(ctx, in)
		if err != nil {
			logger.Fatalf("seed %s: %v", in.Username, err)
		}
		logger.WithField("user_id", user.ID).Infof("seeded %s", user.Username)
	}
}
