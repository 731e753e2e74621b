// marketnode runs the market session engine as a single HTTP node: the three
// market phases, the contract engine and the background timer sweeper, all on
// an in-memory store seeded from a league file.
package main

import (
	"fmt"
	"os"

	"code.cloudfoundry.org/clock"
	"code.cloudfoundry.org/lager"
	"github.com/tedsuo/ifrit"
	"github.com/tedsuo/ifrit/grouper"
	"github.com/tedsuo/ifrit/http_server"
	"github.com/tedsuo/ifrit/sigmon"
	"github.com/tedsuo/rata"
	"github.com/urfave/cli/v2"

	"github.com/fantamercato/market/communication/http/market_http_handlers"
	"github.com/fantamercato/market/communication/http/routes"
	"github.com/fantamercato/market/config"
	"github.com/fantamercato/market/contractengine"
	"github.com/fantamercato/market/firstmarket"
	"github.com/fantamercato/market/ledger"
	"github.com/fantamercato/market/marketstore"
	"github.com/fantamercato/market/markettypes"
	"github.com/fantamercato/market/notification"
	"github.com/fantamercato/market/rubata"
	"github.com/fantamercato/market/sessionlock"
	"github.com/fantamercato/market/svincolati"
	"github.com/fantamercato/market/timersweeper"
)

func main() {
	app := &cli.App{
		Name:  "marketnode",
		Usage: "run the fantasy market session engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "league",
				Aliases: []string{"l"},
				Usage:   "path to the league seed file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	logger := lager.NewLogger("marketnode")
	logger.RegisterSink(lager.NewWriterSink(os.Stdout, logLevel(cfg.LogLevel)))

	store := marketstore.New()
	if leaguePath := c.String("league"); leaguePath != "" {
		members, players, err := config.LoadLeague(leaguePath)
		if err != nil {
			return err
		}
		for _, member := range members {
			store.AddMember(member)
		}
		for _, player := range players {
			store.AddPlayer(player)
		}
		logger.Info("seeded-league", lager.Data{
			"members": len(members),
			"players": len(players),
		})
	}

	clk := clock.NewClock()
	locks := sessionlock.NewKeeper()
	sink, err := notification.NewFanOut(cfg.SweepWorkers, notification.NewLoggerSink(logger))
	if err != nil {
		return err
	}

	budgetLedger := ledger.New(store, store.Contracts())
	contracts := contractengine.New(
		store.Contracts(), store.Rosters(), store, store,
		budgetLedger, cfg.Rules, sink, logger,
	)
	first := firstmarket.New(
		store.Sessions(), store.Rosters(), store, store,
		budgetLedger, locks, clk, cfg.Rules, sink, logger,
	)
	svin := svincolati.New(
		store.Sessions(), store.Rosters(), store, store,
		budgetLedger, locks, clk, cfg.Rules, sink, logger,
	)
	rub := rubata.New(
		store.Sessions(), store.Rosters(), store.Contracts(), store,
		budgetLedger, locks, clk, cfg.Rules, sink, logger,
	)

	sweeper, err := timersweeper.New(
		store.Sessions(),
		map[markettypes.Phase]timersweeper.Expirer{
			markettypes.PhaseFirstMarket: first,
			markettypes.PhaseSvincolati:  svin,
			markettypes.PhaseRubata:      rub,
		},
		clk,
		cfg.SweepInterval,
		cfg.SweepWorkers,
		logger,
	)
	if err != nil {
		return err
	}

	handlers := market_http_handlers.New(first, svin, rub, contracts, budgetLedger, store.Sessions(), logger)
	router, err := rata.NewRouter(routes.Routes, handlers)
	if err != nil {
		return err
	}

	group := grouper.NewOrdered(os.Interrupt, grouper.Members{
		{Name: "api", Runner: http_server.New(cfg.ListenAddress, router)},
		{Name: "timer-sweeper", Runner: sweeper},
	})

	process := ifrit.Invoke(sigmon.New(group))
	logger.Info("started", lager.Data{"listen-address": cfg.ListenAddress})

	err = <-process.Wait()
	if err != nil {
		logger.Error("exited-with-failure", err)
		return err
	}
	logger.Info("exited")
	return nil
}

func logLevel(level string) lager.LogLevel {
	switch level {
	case "debug":
		return lager.DEBUG
	case "error":
		return lager.ERROR
	case "fatal":
		return lager.FATAL
	default:
		return lager.INFO
	}
}
