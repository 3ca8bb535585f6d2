// Command benchmarkd runs the node-benchmarking service: an HTTP dispatcher
// and status reader in front of a Redis-backed job queue, drained by a pool
// of worker loops that drive JSON-RPC load against client-submitted
// endpoints and score the result.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	"github.com/omniaprotocol/node-benchmarking-service/api"
	"github.com/omniaprotocol/node-benchmarking-service/config"
	"github.com/omniaprotocol/node-benchmarking-service/jobqueue"
	"github.com/omniaprotocol/node-benchmarking-service/jobstore"
	"github.com/omniaprotocol/node-benchmarking-service/worker"
)

const (
	queueNamespace = "rsmq"
	queueName      = "jobs_q"
)

func main() {
	app := &cli.App{
		Name:   "benchmarkd",
		Usage:  "distributed JSON-RPC node benchmarking service",
		Flags:  config.Flags,
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Crit("benchmarkd: fatal error", "err", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.FromContext(c)
	if err != nil {
		return err
	}
	if err := config.SetupLogging(cfg); err != nil {
		return err
	}
	log.Info("benchmarkd: starting", "workers", cfg.NumWorkers, "redis", cfg.RedisAddr())

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer rdb.Close()

	store := jobstore.New(rdb)
	queue := jobqueue.New(rdb, queueNamespace, queueName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Startup purges any queue state left over from a previous run — there
	// is no crash-recovery contract (spec §9).
	if err := queue.CreateQueue(ctx); err != nil {
		return err
	}

	httpClient := &http.Client{
		Timeout: 0, // the per-job wall-clock deadline is enforced by loadgen, not the client
		Transport: &http.Transport{
			MaxIdleConnsPerHost: int(cfg.NumWorkers) * 4,
		},
	}

	pool := worker.NewPool(int(cfg.NumWorkers), queue, store, cfg.FailPercentageThreshold, httpClient)
	pool.Start(ctx)

	addr := net.JoinHostPort(cfg.ServerHost, strconv.FormatUint(uint64(cfg.ServerPort), 10))
	server := api.New(addr, queue, store)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("benchmarkd: shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			log.Error("benchmarkd: http server failed", "err", err)
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("benchmarkd: http server shutdown error", "err", err)
	}

	// Cancelling ctx already told every worker loop to stop; wait for them
	// to actually drain before the process exits (in-flight jobs are
	// abandoned per spec §4.7's cancellation rule).
	pool.Wait()
	log.Info("benchmarkd: stopped")
	return nil
}
