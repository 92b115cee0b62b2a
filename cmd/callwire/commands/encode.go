package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	encodeKind        string
	encodeOut         string
	encodeMoreFollow  bool
)

var encodeCmd = &cobra.Command{
	Use:   "encode <file>",
	Short: "Encode a JSON frame description into raw wire bytes",
	Long: `Encode reads a JSON description of a CallRequest or CallResponse body
(the same shape decode produces) and writes its two-pass structured
encoding to --out, or stdout if --out is unset.

Examples:
  callwire encode request.json --kind request --out request.bin
  callwire decode request.bin --kind request | callwire encode - --kind request`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeKind, "kind", "request", "frame kind: request or response")
	encodeCmd.Flags().StringVar(&encodeOut, "out", "", "output file path (default: stdout)")
	encodeCmd.Flags().BoolVar(&encodeMoreFollow, "more-follow", false, "whether more fragment bodies follow this one")
}

func runEncode(cmd *cobra.Command, args []string) error {
	raw, err := readFrameInput(args[0])
	if err != nil {
		return err
	}

	var buf []byte
	switch encodeKind {
	case "request":
		var j requestJSON
		if err := json.Unmarshal(raw, &j); err != nil {
			return fmt.Errorf("parse request JSON: %w", err)
		}
		body, err := j.toBody()
		if err != nil {
			return err
		}
		buf, err = body.Encode(encodeMoreFollow)
		if err != nil {
			return fmt.Errorf("encode call request: %w", err)
		}
	case "response":
		var j responseJSON
		if err := json.Unmarshal(raw, &j); err != nil {
			return fmt.Errorf("parse response JSON: %w", err)
		}
		body, err := j.toBody()
		if err != nil {
			return err
		}
		buf, err = body.Encode(encodeMoreFollow)
		if err != nil {
			return fmt.Errorf("encode call response: %w", err)
		}
	default:
		return fmt.Errorf("unknown --kind %q, want request or response", encodeKind)
	}

	if encodeOut == "" || encodeOut == "-" {
		_, err := cmd.OutOrStdout().Write(buf)
		return err
	}
	return os.WriteFile(encodeOut, buf, 0644)
}
