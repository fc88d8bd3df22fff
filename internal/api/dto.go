package api

// ExpireResponse is returned by POST /v1/admin/expire-pending.
type ExpireResponse struct {
	Expired int `json:"expired"`
}
