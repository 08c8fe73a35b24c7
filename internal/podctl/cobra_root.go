package podctl

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"podd/pkg/types"
)

// Config carries global CLI options shared by all subcommands.
type Config struct {
	Server string
	JSON   bool
}

func defaultServer() string {
	if v := os.Getenv("PODCTL_SERVER"); v != "" {
		return v
	}
	return "http://127.0.0.1:1445"
}

// buildRootCmd is a convenience for help-only fallbacks.
func buildRootCmd() *cobra.Command { return buildRootCmdWith(&Config{Server: defaultServer()}) }

// buildRootCmdWith constructs the Cobra command tree.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "podctl",
		Short:         "Manage GPU pods through a podd daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&cfg.Server, "server", "s", cfg.Server, "podd server base URL (defaults PODCTL_SERVER or http://127.0.0.1:1445)")
	root.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Print raw JSON instead of tables")

	client := func() *apiClient { return newAPIClient(cfg.Server) }

	// pods group
	podsCmd := &cobra.Command{Use: "pods", Short: "List and manage pods", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().listPods(cmd.Context())
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(resp)
		}
		printPodTable(resp.Pods)
		fmt.Printf("\n%d pods, total cost $%.2f\n", resp.Count, resp.TotalCost)
		return nil
	}}

	var createReq struct {
		name, gpu	string
		onDemand	bool
		publicIP	bool
		disk, volume	int
		port		int
	}
	podsCreate := &cobra.Command{Use: "create", Short: "Provision a new pod", Example: "  podctl pods create --name comfy-main --gpu rtx-4090", RunE: func(cmd *cobra.Command, args []string) error {
		interruptible := !createReq.onDemand
		patch := &types.PodConfigPatch{Interruptible: &interruptible}
		if createReq.publicIP {
			patch.PublicIP = &createReq.publicIP
		}
		if createReq.disk > 0 {
			patch.ContainerDiskGB = &createReq.disk
		}
		if createReq.volume > 0 {
			patch.VolumeDiskGB = &createReq.volume
		}
		if createReq.port > 0 {
			patch.Port = &createReq.port
		}
		pod, err := client().createPod(cmd.Context(), types.CreatePodRequest{
			Name:   createReq.name,
			GPUID:  createReq.gpu,
			Config: patch,
		})
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(pod)
		}
		fmt.Printf("created pod %s (%s) on %s at $%.4f/h\n", pod.ID, pod.Name, pod.GPUID, pod.HourlyRate)
		return nil
	}}
	podsCreate.Flags().StringVar(&createReq.name, "name", "", "Pod name (3-50 chars, alphanumeric plus - and _)")
	podsCreate.Flags().StringVar(&createReq.gpu, "gpu", "", "GPU type id, see 'podctl gpus'")
	podsCreate.Flags().BoolVar(&createReq.onDemand, "on-demand", false, "Use non-interruptible Secure Cloud pricing")
	podsCreate.Flags().BoolVar(&createReq.publicIP, "public-ip", false, "Request a public IP with direct TCP ports")
	podsCreate.Flags().IntVar(&createReq.disk, "disk", 0, "Container disk size in GB")
	podsCreate.Flags().IntVar(&createReq.volume, "volume", 0, "Volume disk size in GB")
	podsCreate.Flags().IntVar(&createReq.port, "port", 0, "Workload port to expose")
	_ = podsCreate.MarkFlagRequired("name")
	_ = podsCreate.MarkFlagRequired("gpu")

	podsGet := &cobra.Command{Use: "get <pod-id>", Short: "Show one pod", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		pod, err := client().getPod(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(pod)
	}}

	podsTerminate := &cobra.Command{Use: "terminate <pod-id>", Short: "Terminate a pod", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().terminatePod(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(resp)
		}
		fmt.Printf("%s: %s\n", resp.PodID, resp.Message)
		return nil
	}}

	podsResume := &cobra.Command{Use: "resume <pod-id>", Short: "Restart a stopped pod", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		pod, err := client().resumePod(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(pod)
		}
		fmt.Printf("pod %s resuming, status %s\n", pod.ID, pod.Status)
		return nil
	}}

	podsLogs := &cobra.Command{Use: "logs <pod-id>", Short: "Show a pod's setup logs", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		out, err := client().getPodLogs(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(out)
		}
		for _, line := range out.Logs {
			fmt.Println(line)
		}
		return nil
	}}

	podsCmd.AddCommand(podsCreate, podsGet, podsTerminate, podsResume, podsLogs)

	// gpus
	var gpuTier string
	gpusCmd := &cobra.Command{Use: "gpus", Short: "List available GPU types", RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := client().listGPUs(cmd.Context(), gpuTier)
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(resp)
		}
		printGPUTable(resp.GPUs)
		return nil
	}}
	gpusCmd.Flags().StringVar(&gpuTier, "tier", "", "Filter by tier, e.g. consumer or datacenter")

	// cost group
	costCmd := &cobra.Command{Use: "cost", Short: "Cost reporting", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("cost requires a subcommand: summary|pod")
	}}
	costSummary := &cobra.Command{Use: "summary", Short: "Aggregate cost across all pods", RunE: func(cmd *cobra.Command, args []string) error {
		sum, err := client().costSummary(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(sum)
	}}
	costPod := &cobra.Command{Use: "pod <pod-id>", Short: "Detailed cost for one pod", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		bd, err := client().podCost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(bd)
	}}
	costCmd.AddCommand(costSummary, costPod)

	// estimate
	var estReq struct {
		gpu      string
		hours    float64
		onDemand bool
	}
	estimateCmd := &cobra.Command{Use: "estimate", Short: "Project cost without creating a pod", Example: "  podctl estimate --gpu rtx-3070 --hours 8", RunE: func(cmd *cobra.Command, args []string) error {
		interruptible := !estReq.onDemand
		est, err := client().estimate(cmd.Context(), types.EstimateRequest{
			GPUID:         estReq.gpu,
			Hours:         estReq.hours,
			Interruptible: &interruptible,
		})
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(est)
		}
		fmt.Printf("%s (%s) for %.1fh: $%.2f at $%.4f/h\n",
			est.GPUName, est.CloudType, est.Hours, est.EstimatedCost, est.HourlyRate)
		return nil
	}}
	estimateCmd.Flags().StringVar(&estReq.gpu, "gpu", "", "GPU type id")
	estimateCmd.Flags().Float64Var(&estReq.hours, "hours", 1, "Horizon in hours")
	estimateCmd.Flags().BoolVar(&estReq.onDemand, "on-demand", false, "Price as non-interruptible Secure Cloud")
	_ = estimateCmd.MarkFlagRequired("gpu")

	// status
	statusCmd := &cobra.Command{Use: "status", Short: "Daemon health and totals", RunE: func(cmd *cobra.Command, args []string) error {
		st, err := client().status(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(st)
	}}

	// events
	eventsCmd := &cobra.Command{Use: "events", Short: "Follow the live event stream", Long: "Subscribes to the daemon's SSE stream and prints one event per line. Reconnects automatically until interrupted.", RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return followEvents(ctx, cfg.Server)
	}}

	root.AddCommand(podsCmd, gpusCmd, costCmd, estimateCmd, statusCmd, eventsCmd)
	return root
}

// Main runs the CLI and returns a process exit code.
func Main() int {
	cfg := &Config{Server: defaultServer()}
	root := buildRootCmdWith(cfg)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}
