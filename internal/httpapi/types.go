package httpapi

import (
	"github.com/danielpatrickdp/policy-dash/internal/config"
	"github.com/danielpatrickdp/policy-dash/internal/records"
)

// #region requests
type patchRequest struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

type saveRequest struct {
	Note string `json:"note"`
}

type fetchRequest struct {
	URL string `json:"url"`
}

type rollbackRequest struct {
	ID string `json:"id"`
}

// #endregion requests

// #region responses
type configResponse struct {
	Config  config.DashboardConfig `json:"config"`
	Version string                 `json:"version,omitempty"`
}

type fetchResponse struct {
	Config  config.DashboardConfig `json:"config"`
	Version string                 `json:"version,omitempty"`
	Fetched bool                   `json:"fetched"`
}

type importResponse struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

type optionsResponse struct {
	Categories []records.Option `json:"categories"`
	Languages  []records.Option `json:"languages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// #endregion responses
