package kv

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/zKV/lib/db"
	"github.com/ValentinKolb/zKV/rpc/common"
	"github.com/spf13/cobra"
)

var (
	putCmd = &cobra.Command{
		Use:   "put [key] [value]",
		Short: "Sets the text value of a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Put(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "put successfully")
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the text value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok, err := rpcStore.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, found=%v, value=%s\n", args[0], ok, value)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a key and its value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "delete successfully")
			return nil
		},
	}
	batchCmd = &cobra.Command{
		Use:   "batch [key=value]...",
		Short: "Sets many key value pairs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]db.KeyValue, 0, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok {
					return fmt.Errorf("invalid entry %q (expected key=value)", arg)
				}
				entries = append(entries, db.KeyValue{Key: key, Value: value})
			}
			if err := rpcStore.BatchPut(entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "put %d entries successfully\n", len(entries))
			return nil
		},
	}
	listCmd = &cobra.Command{
		Use:   "list [key]...",
		Short: "Reads the text values of many keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := rpcStore.ListGet(args)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", e.Key, e.Value)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "found %d of %d keys\n", len(entries), len(args))
			return nil
		},
	}
	zaddCmd = &cobra.Command{
		Use:   "zadd [key] [member] [score]",
		Short: "Adds a member to a sorted set or updates its score",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := common.ParseScore(args[2])
			if err != nil {
				return err
			}
			if err := rpcStore.ZAdd(args[0], args[1], score); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "zadd successfully")
			return nil
		},
	}
	zremCmd = &cobra.Command{
		Use:   "zrem [key] [member]",
		Short: "Removes a member from a sorted set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rpcStore.ZRemove(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "zrem successfully")
			return nil
		},
	}
	zrangeCmd = &cobra.Command{
		Use:   "zrange [key] [min] [max]",
		Short: "Lists all members with min <= score <= max (use -inf and +inf for open bounds)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			min, err := common.ParseScore(args[1])
			if err != nil {
				return err
			}
			max, err := common.ParseScore(args[2])
			if err != nil {
				return err
			}
			members, err := rpcStore.ZRange(args[0], min, max)
			if err != nil {
				return err
			}
			for _, m := range members {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", common.FormatScore(m.Score), m.Member)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d member(s)\n", len(members))
			return nil
		},
	}
	zscoreCmd = &cobra.Command{
		Use:   "zscore [key] [member]",
		Short: "Reads the score of a member",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, ok, err := rpcStore.ZScore(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, member=%s, found=%v, score=%s\n", args[0], args[1], ok, common.FormatScore(score))
			return nil
		},
	}
	zcardCmd = &cobra.Command{
		Use:   "zcard [key]",
		Short: "Counts the members of a sorted set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := rpcStore.ZCard(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, members=%d\n", args[0], count)
			return nil
		},
	}
)
