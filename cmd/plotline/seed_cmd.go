package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	corecontrollers "github.com/plotline-hq/plotline/modules/core/presentation/controllers"
	coreservices "github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	estatepersistence "github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence"
	estateservices "github.com/plotline-hq/plotline/modules/estate/services"

	corepersistence "github.com/plotline-hq/plotline/modules/core/infrastructure/persistence"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/eventbus"
)

type seedOptions struct {
	name     string
	slug     string
	email    string
	password string
}

func newSeedCmd() *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo company with a marketer account and sample plots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "Demo Estates", "company name")
	cmd.Flags().StringVar(&opts.slug, "slug", "demo", "company slug")
	cmd.Flags().StringVar(&opts.email, "email", "admin@demo.local", "marketer login email")
	cmd.Flags().StringVar(&opts.password, "password", "changeme", "marketer login password")
	return cmd
}

func seed(opts seedOptions) error {
	conf := configuration.Use()
	defer conf.Unload()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return err
	}
	defer pool.Close()
	ctx = composables.WithPool(ctx, pool)

	tenantService := coreservices.NewTenantService(
		corepersistence.NewTenantRepository(),
		eventbus.NewEventPublisher(logger),
	)
	uidService := coreservices.NewUIDService(corepersistence.NewSequenceRepository())
	personService := estateservices.NewPersonService(estatepersistence.NewPersonRepository(), uidService)
	plotService := estateservices.NewPlotService(estatepersistence.NewPlotRepository(), uidService)

	t, err := tenantService.Create(ctx, opts.name, opts.slug)
	if err != nil {
		return err
	}
	logger.Infof("created company %s (%s)", t.Name(), t.ID())

	ctx = composables.WithTenant(ctx, t)

	hash, err := corecontrollers.HashPassword(opts.password)
	if err != nil {
		return err
	}
	marketer, err := personService.Create(ctx, person.RoleMarketer, "Demo", "Admin",
		person.WithEmail(opts.email),
		person.WithPasswordHash(hash),
	)
	if err != nil {
		return err
	}
	logger.Infof("created marketer %s (%s)", marketer.UID(), opts.email)

	samples := []struct {
		estate string
		number string
		area   float64
		price  int64
	}{
		{"Sunrise Gardens", "A-01", 450, 25_000_00},
		{"Sunrise Gardens", "A-02", 450, 25_000_00},
		{"Hilltop View", "B-01", 600, 40_000_00},
	}
	for _, s := range samples {
		p, err := plotService.Create(ctx, s.estate, s.number, s.area, s.price)
		if err != nil {
			return err
		}
		logger.Infof("created plot %s (%s %s)", p.UID(), s.estate, s.number)
	}
	return nil
}
