package callframe

// FlagFragment is flags bit 0: set to indicate more continuation bodies
// follow for this logical call. Other bits are reserved and must be
// preserved verbatim on round-trip (§3, §6).
const FlagFragment uint8 = 1 << 0

// DecodeOptions governs structured-decode compatibility behavior that
// the wire format itself leaves to the implementation (§9 Open Question
// a).
type DecodeOptions struct {
	// AllowInvalidUTF8, when true, forwards a service name that fails
	// UTF-8 validation as raw bytes (see CallRequestBody.RawService)
	// instead of failing the decode with InvalidUtf8. Default: false
	// (reject), matching the spec's stated default.
	AllowInvalidUTF8 bool
}
