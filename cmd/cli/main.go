// Command portfolio is a CLI client for the portfolio API. It keeps a local
// session that survives API outages via a fallback account registry.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-hub/internal/client"
	"portfolio-hub/internal/config"
	"portfolio-hub/internal/session"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage: portfolio <command> [flags]

commands:
  signup    -email -password -name       create an account
  login     -email -password             authenticate
  logout                                 end the session
  whoami                                 show the current session
  profile   [-name] [-bio] [-dob]        update profile fields
  activity                               show the activity log
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}

	store, err := session.NewFileStore(cfg.Client.StateDir)
	if err != nil {
		fatalf("open session state: %v", err)
	}

	manager := session.NewManager(session.Config{
		Remote: session.NewRemoteAPI(client.New(cfg.Client.APIURL, 10*time.Second)),
		Store:  store,
		Owner: session.OwnerIdentity{
			Email:    cfg.Owner.Email,
			Password: cfg.Owner.Password,
			Name:     cfg.Owner.Name,
		},
		Logger: logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.Rehydrate(ctx)

	switch os.Args[1] {
	case "signup":
		cmdSignup(ctx, manager, os.Args[2:])
	case "login":
		cmdLogin(ctx, manager, os.Args[2:])
	case "logout":
		cmdLogout(manager)
	case "whoami":
		cmdWhoami(manager)
	case "profile":
		cmdProfile(ctx, manager, os.Args[2:])
	case "activity":
		cmdActivity(manager)
	default:
		usage()
	}
}

func cmdSignup(ctx context.Context, manager *session.Manager, args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	_ = fs.Parse(args)

	if *email == "" || *password == "" || *name == "" {
		fatalf("signup requires -email, -password and -name")
	}

	if !manager.Signup(ctx, *email, *password, *name) {
		fatalf("signup failed: account may already exist")
	}
	fmt.Printf("signed up as %s\n", manager.CurrentUser().Name)
}

func cmdLogin(ctx context.Context, manager *session.Manager, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		fatalf("login requires -email and -password")
	}

	if !manager.Login(ctx, *email, *password) {
		fatalf("login failed: invalid credentials")
	}
	user := manager.CurrentUser()
	fmt.Printf("logged in as %s (%s)\n", user.Name, user.Role)
}

func cmdLogout(manager *session.Manager) {
	manager.Logout()
	fmt.Println("logged out")
}

func cmdWhoami(manager *session.Manager) {
	user := manager.CurrentUser()
	if user == nil {
		fmt.Println("not logged in")
		return
	}
	fmt.Printf("id:    %s\nname:  %s\nemail: %s\nrole:  %s\n", user.ID, user.Name, user.Email, user.Role)
	if user.Bio != "" {
		fmt.Printf("bio:   %s\n", user.Bio)
	}
}

func cmdProfile(ctx context.Context, manager *session.Manager, args []string) {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	name := fs.String("name", "", "new display name")
	bio := fs.String("bio", "", "new bio")
	dob := fs.String("dob", "", "date of birth (YYYY-MM-DD)")
	_ = fs.Parse(args)

	var updates session.ProfileUpdate
	if *name != "" {
		updates.Name = name
	}
	if *bio != "" {
		updates.Bio = bio
	}
	if *dob != "" {
		updates.DateOfBirth = dob
	}
	if updates.Name == nil && updates.Bio == nil && updates.DateOfBirth == nil {
		fatalf("profile requires at least one of -name, -bio, -dob")
	}

	if !manager.UpdateProfile(ctx, updates) {
		fatalf("profile update failed: not logged in")
	}
	fmt.Println("profile updated")
}

func cmdActivity(manager *session.Manager) {
	activities := manager.Activities()
	if len(activities) == 0 {
		fmt.Println("no activity")
		return
	}
	for _, entry := range activities {
		fmt.Printf("%s  %s\n", entry.Timestamp.Local().Format("2006-01-02 15:04:05"), entry.Description)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
