package commands

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/spf13/cobra"

	"github.com/coreframe/callwire/internal/protocol/callframe"
)

var inspectKind string

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Report lazy-accessor field reads over a raw frame body",
	Long: `Inspect wraps a raw frame body in the lazy accessor types
(RequestFrame/ResponseFrame) and reports the outcome of reading its
fast-path fields in wire order, without performing a full structured
decode. It is meant to exercise and visualize the offset cache (§4.8)
rather than to produce a complete dump -- use decode for that.

Examples:
  callwire inspect request.bin --kind request
  callwire inspect response.bin --kind response`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectKind, "kind", "request", "frame kind: request or response")
}

func runInspect(cmd *cobra.Command, args []string) error {
	buf, err := readFrameInput(args[0])
	if err != nil {
		return err
	}

	report := orderedmap.New[string, string]()

	switch inspectKind {
	case "request":
		inspectRequest(buf, report)
	case "response":
		inspectResponse(buf, report)
	default:
		return fmt.Errorf("unknown --kind %q, want request or response", inspectKind)
	}

	for pair := report.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", pair.Key, pair.Value)
	}
	return nil
}

func inspectRequest(buf []byte, report *orderedmap.OrderedMap[string, string]) {
	f := callframe.NewRequestFrame(buf, len(buf))
	defer f.Release()

	if flags, err := f.ReadFlags(); err == nil {
		report.Set("flags", fmt.Sprintf("0x%02x", flags))
	} else {
		report.Set("flags", "error: "+err.Error())
	}

	if ttl, err := f.ReadTTL(); err == nil {
		report.Set("ttl", fmt.Sprintf("%d", ttl))
	} else {
		report.Set("ttl", "error: "+err.Error())
	}

	if service, err := f.ReadServiceStr(); err == nil {
		report.Set("service", service)
	} else {
		report.Set("service", "error: "+err.Error())
	}

	if headers, err := f.ReadHeaders(); err == nil {
		report.Set("header_count", fmt.Sprintf("%d", len(headers)))
	} else {
		report.Set("header_count", "error: "+err.Error())
	}

	cn, status := f.ReadCallerNameStr()
	report.Set("caller_name", fmt.Sprintf("%s (%s)", cn, status))

	rd, status := f.ReadRoutingDelegateStr()
	report.Set("routing_delegate", fmt.Sprintf("%s (%s)", rd, status))

	arg1, status := f.ReadArg1Str()
	report.Set("arg1", fmt.Sprintf("%s (%s)", arg1, status))

	if terminal, err := f.IsFrameTerminal(); err == nil {
		report.Set("terminal", fmt.Sprintf("%t", terminal))
	} else {
		report.Set("terminal", "error: "+err.Error())
	}
}

func inspectResponse(buf []byte, report *orderedmap.OrderedMap[string, string]) {
	f := callframe.NewResponseFrame(buf, len(buf))
	defer f.Release()

	if flags, err := f.ReadFlags(); err == nil {
		report.Set("flags", fmt.Sprintf("0x%02x", flags))
	} else {
		report.Set("flags", "error: "+err.Error())
	}

	if code, err := f.ReadCode(); err == nil {
		report.Set("code", fmt.Sprintf("%d", code))
	} else {
		report.Set("code", "error: "+err.Error())
	}

	if headers, err := f.ReadHeaders(); err == nil {
		report.Set("header_count", fmt.Sprintf("%d", len(headers)))
	} else {
		report.Set("header_count", "error: "+err.Error())
	}

	arg1, status := f.ReadArg1()
	report.Set("arg1", fmt.Sprintf("%s (%s)", arg1, status))

	if terminal, err := f.IsFrameTerminal(); err == nil {
		report.Set("terminal", fmt.Sprintf("%t", terminal))
	} else {
		report.Set("terminal", "error: "+err.Error())
	}
}
