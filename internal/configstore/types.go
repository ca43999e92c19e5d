package configstore

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/policy-dash/internal/config"
)

// ErrNotFound is returned when a version or the active pointer does not exist.
var ErrNotFound = errors.New("config version not found")

// #region version
// Version is one saved dashboard configuration.
type Version struct {
	ID        string                 `json:"id"`
	ParentID  string                 `json:"parentId,omitempty"`
	Config    config.DashboardConfig `json:"config"`
	Note      string                 `json:"note,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Active    bool                   `json:"active"`
}

// #endregion version
