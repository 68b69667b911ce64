package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/polarysfoundation/polarys-bio/modules/accounts"
	"github.com/polarysfoundation/polarys-bio/modules/core"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus/bio"
	"github.com/polarysfoundation/polarys-bio/modules/core/consensus/pow"
	"github.com/polarysfoundation/polarys-bio/modules/miner"
	"github.com/polarysfoundation/polarys-bio/modules/node"
	"github.com/polarysfoundation/polarys-bio/modules/oracle"
	"github.com/polarysfoundation/polarys-bio/modules/params"
	"github.com/polarysfoundation/polarys-bio/modules/prydb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the node and the miner",
	Args:  cobra.NoArgs,
	RunE:  runNode,
}

func init() {
	params.SetFlags(runCmd.Flags(), params.DefaultConfig())
}

func runNode(cmd *cobra.Command, args []string) error {
	cfg, err := params.LoadConfig(configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := newEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	db, err := prydb.InitDB(cfg.DataDir, cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	blockchain, err := core.InitBlockchain(db, &cfg.Chain, engine, nil, logger)
	if err != nil {
		return err
	}

	accts, err := accounts.InitAccounts(cfg.DataDir, logger)
	if err != nil {
		return err
	}
	coinbase, err := accts.Coinbase([]byte(cfg.Passphrase))
	if err != nil {
		return fmt.Errorf("failed to unlock coinbase: %w", err)
	}
	defer func() {
		if err := accts.Lock(coinbase); err != nil {
			logger.Warn(err)
		}
	}()

	nd, err := node.NewNode(cfg, blockchain, logger)
	if err != nil {
		return err
	}

	worker := miner.NewWorker(miner.NewMiner(coinbase, accts), engine, blockchain, nd, &cfg.Chain, logger)

	logger.WithFields(logrus.Fields{
		"coinbase": coinbase,
		"chain_id": blockchain.ChainID(),
		"engine":   blockchain.Engine().Name(),
		"height":   blockchain.LatestBlock().Height(),
	}).Info("starting node")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return nd.Run(gctx)
	})
	g.Go(func() error {
		worker.Run()
		<-gctx.Done()
		worker.Stop()
		return nil
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, logger)
		})
	}

	err = g.Wait()
	logger.Info("node terminated")
	return err
}

// newEngine builds the configured proof scheme. For the bio scheme the oracle
// is built and queried once here; failures abort start-up.
func newEngine(ctx context.Context, cfg *params.Config, logger *logrus.Logger) (consensus.Engine, error) {
	switch cfg.Scheme {
	case params.SchemePow:
		pe := cfg.Chain.PowEngine
		return pow.InitConsensus(pe.Difficulty, pe.Rounds, logger), nil
	case params.SchemeBio:
		be := cfg.Chain.BioEngine
		o := oracle.FromParams(be, oracle.WithLogger(logger))

		session, err := oracle.Initialize(ctx, o)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize oracle: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"base":      session.BaseScore(),
			"widths":    session.Widths(),
			"threshold": session.Threshold(be.Margin),
		}).Info("oracle ready")

		return bio.InitConsensus(o, session, be.Margin, logger), nil
	default:
		return nil, fmt.Errorf("unknown scheme %q", cfg.Scheme)
	}
}

func serveMetrics(ctx context.Context, addr string, logger *logrus.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", addr).Info("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
