package callframe

import "github.com/coreframe/callwire/internal/protocol/wire"

// MaxArgCount bounds how many args ReadArgsFrom will accumulate before
// giving up with a LengthOverflow error; it is a fixed defensive
// ceiling, not part of the wire format, which has no explicit arg count
// (§3: "the count is implicit").
const MaxArgCount = 1 << 16

// ReadArgsFrom consumes the remainder of the cursor as a packed sequence
// of arg2 entries (§4.5: "zero-or-more arg~2 entries packed until end of
// frame"). The last arg may be empty.
func ReadArgsFrom(c *wire.Cursor) ([][]byte, error) {
	var args [][]byte
	for c.Remaining() > 0 {
		arg, err := c.ReadArg2()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if len(args) > MaxArgCount {
			return nil, lengthOverflow(c.Pos(), len(args), MaxArgCount)
		}
	}
	return args, nil
}

// WriteArgsInto appends the arg2 encoding of each entry in args to buf.
//
// moreFollow communicates whether more logical arguments remain to be
// carried by a later continuation body (a decision made by the outer
// framing layer, which owns fragmentation — §1, §4.5); this codec simply
// reports it back as the fragment bit the caller should OR into the
// body's flags byte. Per §4.6 write order, the flags byte is written by
// the caller only after this call returns, since the fragment bit is not
// known until args-writing completes.
func WriteArgsInto(buf []byte, args [][]byte, moreFollow bool) (out []byte, fragment bool, err error) {
	for _, arg := range args {
		if buf, err = wire.WriteArg2(buf, arg); err != nil {
			return buf, false, err
		}
	}
	return buf, moreFollow, nil
}

// ArgsLen returns the encoded byte length of args.
func ArgsLen(args [][]byte) int {
	n := 0
	for _, arg := range args {
		n += wire.Arg2Len(arg)
	}
	return n
}
