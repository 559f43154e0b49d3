// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/bvk/flipbot/api"
	"github.com/bvk/flipbot/cli"
	"github.com/shirou/gopsutil/v4/process"
)

type Status struct {
	ClientFlags
}

func (c *Status) Synopsis() string {
	return "Prints daemon health, balance and activity summary"
}

func (c *Status) Command() (*flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("status", flag.ContinueOnError)
	c.ClientFlags.SetFlags(fset)
	return fset, cli.CmdFunc(c.run)
}

func (c *Status) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	req := &api.StatusRequest{}
	resp, err := Post[api.StatusResponse](ctx, &c.ClientFlags, api.StatusPath, req)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "Uptime\t%s\n", resp.Uptime.Truncate(time.Second))
	fmt.Fprintf(tw, "Balance\t%d\n", resp.Balance)
	fmt.Fprintf(tw, "Games\t%s\n", strings.Join(resp.Games, ", "))
	fmt.Fprintf(tw, "Active sales\t%d\n", resp.NumActiveSales)
	fmt.Fprintf(tw, "Background jobs\t%d\n", resp.NumJobs)
	if !resp.LastScanAt.IsZero() {
		fmt.Fprintf(tw, "Last scan\t%s\n", resp.LastScanAt.Format(time.RFC3339))
	}

	// Process stats live outside the api; the daemon only reports its pid.
	if proc, err := c.daemonProcess(ctx); err != nil {
		log.Printf("could not resolve daemon process (ignored): %v", err)
	} else {
		fmt.Fprintf(tw, "Pid\t%d\n", proc.Pid)
		if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
			fmt.Fprintf(tw, "CPU\t%.1f%%\n", cpu)
		}
		if mem, err := proc.MemoryInfoWithContext(ctx); err == nil {
			fmt.Fprintf(tw, "RSS\t%d MiB\n", mem.RSS/(1<<20))
		}
	}
	return tw.Flush()
}

func (c *Status) daemonProcess(ctx context.Context) (*process.Process, error) {
	addrURL := c.AddressURL()
	addrURL.Path = path.Join(addrURL.Path, "/pid")
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HttpClient().Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("invalid pid response %q: %w", data, err)
	}
	return process.NewProcessWithContext(ctx, int32(pid))
}
