package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreframe/callwire/internal/protocol/callframe"
)

var decodeKind string

var decodeCmd = &cobra.Command{
	Use:   "decode <file>",
	Short: "Fully decode a raw frame body into JSON",
	Long: `Decode reads a raw CallRequest or CallResponse frame body and prints
its fully structured decode as JSON.

Examples:
  callwire decode request.bin --kind request
  callwire decode response.bin --kind response`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeKind, "kind", "request", "frame kind: request or response")
}

func runDecode(cmd *cobra.Command, args []string) error {
	buf, err := readFrameInput(args[0])
	if err != nil {
		return err
	}

	var out []byte
	switch decodeKind {
	case "request":
		body, err := callframe.DecodeCallRequestBody(buf, callframe.DecodeOptions{})
		if err != nil {
			return fmt.Errorf("decode call request: %w", err)
		}
		out, err = marshalIndent(requestFromBody(body))
		if err != nil {
			return err
		}
	case "response":
		body, err := callframe.DecodeCallResponseBody(buf)
		if err != nil {
			return fmt.Errorf("decode call response: %w", err)
		}
		out, err = marshalIndent(responseFromBody(body))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown --kind %q, want request or response", decodeKind)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func readFrameInput(path string) ([]byte, error) {
	if path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}
