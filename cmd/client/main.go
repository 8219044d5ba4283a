// cmd/client is a CLI client for the replicated key-value store, built with
// Cobra.
//
// Usage:
//
//	kvcli set mykey "hello world"   --server http://localhost:15501
//	kvcli delete mykey              --server http://localhost:15501
//	kvcli records                   --server http://localhost:15501
//	kvcli snapshot                  --server http://localhost:15501
//	kvcli exclude 1,2               --server http://localhost:15501
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kvgossip/internal/client"
	"kvgossip/internal/store"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "kvcli",
		Short: "CLI client for the replicated key-value store",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:15501", "node address")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")

	root.AddCommand(setCmd(), deleteCmd(), recordsCmd(), snapshotCmd(), excludeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Assign a value to a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			return c.Set(context.Background(), args[0], args[1])
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			return c.Delete(context.Background(), args[0])
		},
	}
}

func recordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "Print the node's currently visible data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			records, err := c.Records(context.Background())
			if err != nil {
				return err
			}
			return prettyPrint(records)
		},
	}
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the node's internal snapshot (data, per-key clocks, local clock)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			snap, err := c.Snapshot(context.Background())
			if err != nil {
				return err
			}
			return prettyPrint(snap)
		},
	}
}

func excludeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exclude <comma-separated node ids>",
		Short: "Install a peer blacklist, simulating a network partition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ids []store.NodeID
			for _, tok := range strings.Split(args[0], ",") {
				id, err := strconv.Atoi(strings.TrimSpace(tok))
				if err != nil {
					return fmt.Errorf("invalid node id %q: %w", tok, err)
				}
				ids = append(ids, store.NodeID(id))
			}
			c := client.New(serverAddr, timeout)
			return c.Exclude(context.Background(), ids)
		},
	}
}

func prettyPrint(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
