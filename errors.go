package cartsync

import "fmt"

// Exit codes. Each failure class gets a distinct code so schedulers and
// humans can tell a blocked run from a broken one.
const (
	ExitOK            = 0
	ExitBlocked       = 1
	ExitUsage         = 2
	ExitDataIntegrity = 3
	ExitAuth          = 4
	ExitDriverSetup   = 10
	ExitAddFailed     = 11
)

// RunError is a failure with a human-readable cause and an explicit next
// action. No failure in this system is surfaced without both.
type RunError struct {
	Code     int
	Short    string
	Context  string
	NextStep string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %s", e.Short, e.Context)
}

func (e *RunError) Unwrap() error { return e.Err }

// Format renders the error for terminal output.
func (e *RunError) Format() string {
	return fmt.Sprintf("ERROR [%d]: %s\n  Context: %s\n  Next step: %s\n", e.Code, e.Short, e.Context, e.NextStep)
}

// NewUnmappedItemError reports an item with no library mapping. The run is
// blocked until a human records one or moves the item off the list.
func NewUnmappedItemError(item, searchURL, listName string) *RunError {
	return &RunError{
		Code:    ExitBlocked,
		Short:   "Unknown/unmapped item",
		Context: fmt.Sprintf("Item %q has no mapping in the product library", item),
		NextStep: fmt.Sprintf(
			"Search and record it: %s then re-run. If this is non-grocery, move it with: cartsync move %q --from %q --to <other list>",
			searchURL, item, listName),
	}
}

// NewAmbiguousMappingError reports an item with fuzzy candidates but no
// confirmed mapping. Same blocking behavior as an unmapped item.
func NewAmbiguousMappingError(item string, candidates int) *RunError {
	return &RunError{
		Code:     ExitBlocked,
		Short:    "Ambiguous mapping",
		Context:  fmt.Sprintf("Item %q has %d fuzzy candidate(s) but none confirmed", item, candidates),
		NextStep: fmt.Sprintf("Run: cartsync suggest %q, confirm a candidate with cartsync record, then re-run", item),
	}
}

// NewDataIntegrityError reports a malformed persisted structure. Fatal:
// the engine never skips entries it cannot parse.
func NewDataIntegrityError(path string, err error) *RunError {
	return &RunError{
		Code:     ExitDataIntegrity,
		Short:    "Persisted state is malformed",
		Context:  fmt.Sprintf("%s: %v", path, err),
		NextStep: fmt.Sprintf("Fix %s by hand (it is plain JSON) and re-run", path),
		Err:      err,
	}
}

// NewAuthError reports a collaborator authentication failure.
func NewAuthError(collaborator string, err error) *RunError {
	return &RunError{
		Code:     ExitAuth,
		Short:    fmt.Sprintf("%s authentication failed", collaborator),
		Context:  err.Error(),
		NextStep: fmt.Sprintf("Refresh the %s credentials in the environment and re-run", collaborator),
		Err:      err,
	}
}

// NewDriverSetupError reports that the browser driver could not start.
func NewDriverSetupError(detail string) *RunError {
	return &RunError{
		Code:     ExitDriverSetup,
		Short:    "Cart driver setup required",
		Context:  detail,
		NextStep: "Install a Chromium browser reachable by go-rod (or set HYVEE_BROWSER_BIN) and re-run",
	}
}

// NewAddFailedError reports a per-item add failure. Callers log it to the
// unavailable log and continue; it only becomes the run result when nothing
// else failed harder.
func NewAddFailedError(item string, attempts int, searchURL string) *RunError {
	return &RunError{
		Code:     ExitAddFailed,
		Short:    "Failed to add item to cart",
		Context:  fmt.Sprintf("Item %q, attempted %d time(s)", item, attempts),
		NextStep: fmt.Sprintf("Add manually: %s then re-run", searchURL),
	}
}
