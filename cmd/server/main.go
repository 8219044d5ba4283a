// cmd/server is the entrypoint for a single KV store node.
//
// The cluster table is compiled in and identical across every node; the
// only thing that varies per process is which entry in that table is this
// node. Hence the CLI takes exactly one positional argument — the node id —
// and nothing else.
//
// Example — three-node default cluster, one process per terminal:
//
//	./kvnode 0
//	./kvnode 1
//	./kvnode 2
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"kvgossip/internal/api"
	"kvgossip/internal/cluster"
	"kvgossip/internal/store"
)

func main() {
	cmd := &cobra.Command{
		Use:   "kvnode <node-id>",
		Short: "Run one node of the replicated key-value cluster",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var id int
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return fmt.Errorf("node id must be an integer: %w", err)
	}
	self := store.NodeID(id)

	table := cluster.DefaultTable()
	peer, ok := table.Get(self)
	if !ok {
		return fmt.Errorf("node id %d is not in the cluster table", id)
	}

	s := store.New(self)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.Logger(), api.Recovery())
	api.NewHandler(s).Register(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"node": id, "status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", peer.Host, peer.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	gossipCtx, stopGossip := context.WithCancel(context.Background())
	gossip := cluster.NewGossip(self, table, s)
	go gossip.Run(gossipCtx)

	go func() {
		log.Printf("node %d listening on %s (gossip every %s)", id, addr, peer.Interval)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("shutting down node %d", id)
	stopGossip()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	return nil
}
