package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/transnet/rms/internal/authorization"
	"github.com/transnet/rms/internal/config"
	"github.com/transnet/rms/internal/observability"
	"github.com/transnet/rms/pkg/db"
	"go.uber.org/fx"
)

// grantperm assigns a role to an actor, e.g.
//
//	grantperm -actor alice -role role:operator
func main() {
	actor := flag.String("actor", "", "actor to grant the role to")
	role := flag.String("role", "", "role to grant (role:viewer, role:operator, role:admin)")
	flag.Parse()

	if *actor == "" || *role == "" {
		flag.Usage()
		os.Exit(2)
	}

	app := fx.New(
		config.Module,
		observability.Module,
		db.Module,
		fx.Provide(authorization.NewEnforcer),
		fx.Provide(authorization.NewService),
		fx.Invoke(func(svc authorization.Service, sd fx.Shutdowner) error {
			if err := svc.Grant(context.Background(), *actor, *role); err != nil {
				fmt.Fprintf(os.Stderr, "grant failed: %v\n", err)
				_ = sd.Shutdown(fx.ExitCode(1))
				return nil
			}
			fmt.Printf("granted %s to %s\n", *role, *actor)
			return sd.Shutdown()
		}),
	)
	app.Run()
}
