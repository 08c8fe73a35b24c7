package podctl

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"podd/pkg/types"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPodTable(pods []types.Pod) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGPU\tSTATUS\tRATE/H\tCOST\tENDPOINT")
	for _, p := range pods {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t$%.4f\t$%.4f\t%s\n",
			p.ID, p.Name, p.GPUID, p.Status, p.HourlyRate, p.CostSoFar, p.EndpointURL)
	}
	tw.Flush()
}

func printGPUTable(gpus []types.GPU) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVRAM\tTIER\tBASE $/H")
	for _, g := range gpus {
		fmt.Fprintf(tw, "%s\t%s\t%d GB\t%s\t$%.2f\n",
			g.ID, g.DisplayName, g.VRAMGB, g.Tier, g.CostPerHour)
	}
	tw.Flush()
}
