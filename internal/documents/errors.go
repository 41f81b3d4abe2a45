package documents

import "errors"

var (
	// ErrNotFound signals that no version exists for the requested scope.
	// Operations that require a specific prerequisite version (publish,
	// discard) raise it; leaner operations return nil or an empty result
	// instead, since "already in target state" is a common caller path.
	ErrNotFound = errors.New("document not found")

	// ErrDeleteDraftDirectly rejects deleting a draft version directly.
	// Drafts only disappear with their whole document or locale, or by
	// being discarded against a published counterpart.
	ErrDeleteDraftDirectly = errors.New("cannot delete a draft document directly")

	// ErrMissingData rejects a create call without a data payload.
	ErrMissingData = errors.New("create requires a data attribute")
)
