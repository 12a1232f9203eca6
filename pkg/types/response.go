package types

// ErrorBody is the wire shape of every failed response. Browser clients read
// only Error; Code and Details exist for tooling.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}
